// Package lark delivers blocked-verdict notifications to applicants over
// the Lark messaging API.
package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

// Config holds Lark app credentials.
type Config struct {
	AppID     string
	AppSecret string
}

// Notifier implements port.Notifier. Delivery is best-effort; the engine
// logs failures and moves on.
type Notifier struct {
	client *lark.Client
	logger *zap.Logger
}

// NewNotifier creates a Lark-backed notifier.
func NewNotifier(cfg Config, logger *zap.Logger) *Notifier {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithEnableTokenCache(true),
	)
	return &Notifier{
		client: client,
		logger: logger,
	}
}

// NotifyBlocked sends the applicant a text message listing the blocked
// findings.
func (n *Notifier) NotifyBlocked(ctx context.Context, userID string, result *entity.ComplianceCheckResult) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}

	content, err := json.Marshal(map[string]string{"text": blockedMessage(result)})
	if err != nil {
		return fmt.Errorf("failed to build message content: %w", err)
	}

	req := larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType("user_id").
		Body(larkIm.NewCreateMessageReqBodyBuilder().
			ReceiveId(userID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send blocked-verdict message",
			zap.String("user_id", userID),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		n.logger.Error("Lark API returned failure",
			zap.String("user_id", userID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("lark API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	n.logger.Info("Blocked-verdict notification sent", zap.String("user_id", userID))
	return nil
}

// blockedMessage renders the blocked findings bilingually.
func blockedMessage(result *entity.ComplianceCheckResult) string {
	var sb strings.Builder
	sb.WriteString("Your submission was blocked by compliance checks (提交未通過合規檢核):\n")
	for _, item := range result.Checks {
		if item.Status != entity.CheckStatusBlocked {
			continue
		}
		sb.WriteString(fmt.Sprintf("- [%s] %s", item.RuleReference, item.Message))
		if item.MessageLocalized != "" {
			sb.WriteString(fmt.Sprintf(" / %s", item.MessageLocalized))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
