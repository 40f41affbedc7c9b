package services

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"go.uber.org/zap"
)

// LineService delivers replies and manages rich menus through the LINE
// Messaging API. Calls do not take the caller's context: the SDK's
// WithContext sets it on the shared client, which is not safe across
// concurrent requests.
type LineService struct {
	api    *messaging_api.MessagingApiAPI
	logger *zap.Logger
}

// NewLineService creates a new LINE service
func NewLineService(channelAccessToken string, logger *zap.Logger) (*LineService, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelAccessToken)
	if err != nil {
		return nil, fmt.Errorf("create line messaging client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineService{api: api, logger: logger}, nil
}

// ReplyText answers an event with a single text message.
func (s *LineService) ReplyText(_ context.Context, replyToken, text string) error {
	_, err := s.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			&messaging_api.TextMessage{Text: text},
		},
	})
	if err != nil {
		return fmt.Errorf("line reply: %w", err)
	}
	return nil
}

// Rich menu postback payloads. The display texts double as trigger phrases.
const (
	PostbackDestinations = "popular_destinations"
	PostbackPlanning     = "travel_planning"
	PostbackFood         = "food_recommendation"
)

func travelRichMenu() *messaging_api.RichMenuRequest {
	return &messaging_api.RichMenuRequest{
		Size:        &messaging_api.RichMenuSize{Width: 2500, Height: 843},
		Selected:    false,
		Name:        "Travel Bot Menu",
		ChatBarText: "選單",
		Areas: []messaging_api.RichMenuArea{
			{
				Bounds: &messaging_api.RichMenuBounds{X: 0, Y: 0, Width: 833, Height: 843},
				Action: &messaging_api.PostbackAction{Label: "熱門景點", Data: PostbackDestinations, DisplayText: "查看熱門景點"},
			},
			{
				Bounds: &messaging_api.RichMenuBounds{X: 833, Y: 0, Width: 833, Height: 843},
				Action: &messaging_api.PostbackAction{Label: "旅遊規劃", Data: PostbackPlanning, DisplayText: "開始規劃旅遊"},
			},
			{
				Bounds: &messaging_api.RichMenuBounds{X: 1666, Y: 0, Width: 834, Height: 843},
				Action: &messaging_api.PostbackAction{Label: "美食推薦", Data: PostbackFood, DisplayText: "尋找美食"},
			},
		},
	}
}

// CreateDefaultRichMenu creates the three-button travel menu and makes it the
// default for every user.
func (s *LineService) CreateDefaultRichMenu(_ context.Context) (string, error) {
	created, err := s.api.CreateRichMenu(travelRichMenu())
	if err != nil {
		return "", fmt.Errorf("create rich menu: %w", err)
	}
	s.logger.Info("rich menu created", zap.String("rich_menu_id", created.RichMenuId))

	if _, err := s.api.SetDefaultRichMenu(created.RichMenuId); err != nil {
		return created.RichMenuId, fmt.Errorf("set default rich menu: %w", err)
	}
	s.logger.Info("rich menu set as default", zap.String("rich_menu_id", created.RichMenuId))
	return created.RichMenuId, nil
}

// ListRichMenus returns the ids and names of the channel's rich menus.
func (s *LineService) ListRichMenus(_ context.Context) ([]RichMenuSummary, error) {
	list, err := s.api.GetRichMenuList()
	if err != nil {
		return nil, fmt.Errorf("list rich menus: %w", err)
	}
	menus := make([]RichMenuSummary, 0, len(list.Richmenus))
	for _, m := range list.Richmenus {
		menus = append(menus, RichMenuSummary{ID: m.RichMenuId, Name: m.Name, ChatBarText: m.ChatBarText})
	}
	return menus, nil
}

// DeleteAllRichMenus removes every rich menu, logging and skipping failures.
func (s *LineService) DeleteAllRichMenus(_ context.Context) (int, error) {
	menus, err := s.ListRichMenus(context.Background())
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, m := range menus {
		if _, err := s.api.DeleteRichMenu(m.ID); err != nil {
			s.logger.Error("delete rich menu failed", zap.String("rich_menu_id", m.ID), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}

// RichMenuSummary is the part of a rich menu exposed by the admin API
type RichMenuSummary struct {
	ID          string `json:"richMenuId"`
	Name        string `json:"name"`
	ChatBarText string `json:"chatBarText"`
}

// SignatureVerifier checks the x-line-signature header
type SignatureVerifier struct {
	secret string
}

// NewSignatureVerifier creates a verifier for the channel secret
func NewSignatureVerifier(channelSecret string) SignatureVerifier {
	return SignatureVerifier{secret: channelSecret}
}

// Valid reports whether signature is the base64 HMAC-SHA256 of body. An
// empty channel secret accepts nothing.
func (v SignatureVerifier) Valid(body []byte, signature string) bool {
	if v.secret == "" {
		return false
	}
	return webhook.ValidateSignature(v.secret, signature, body)
}
