package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"

	wderrors "github.com/iamwavecut/warden/internal/errors"
)

const adminCacheSize = 4096

var ErrMessageNotFound = errors.Wrap(wderrors.ErrNotFound, "message to delete not found")

// BotAPI is the part of *api.BotAPI the operations rely on.
type BotAPI interface {
	Request(c api.Chattable) (*api.APIResponse, error)
	Send(c api.Chattable) (api.Message, error)
	GetChatAdministrators(config api.ChatAdministratorsConfig) ([]api.ChatMember, error)
	GetStickerSet(config api.GetStickerSetConfig) (api.StickerSet, error)
}

// Operations provides the Bot API calls moderation needs.
type Operations struct {
	bot    BotAPI
	admins *expirable.LRU[int64, []api.ChatMember]
}

func NewOperations(bot BotAPI, adminTTL time.Duration) *Operations {
	return &Operations{
		bot:    bot,
		admins: expirable.NewLRU[int64, []api.ChatMember](adminCacheSize, nil, adminTTL),
	}
}

func apiErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", wderrors.ErrExternalAPI, op, err)
}

// DeleteMessage returns ErrMessageNotFound when the message is already gone.
func (o *Operations) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := o.bot.Request(api.NewDeleteMessage(chatID, messageID)); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "message to delete not found") {
			return ErrMessageNotFound
		}
		return apiErr("delete message", err)
	}
	return nil
}

// RestrictMember takes away every send permission until the given time.
func (o *Operations) RestrictMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	config := api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
		UntilDate: until.Unix(),
		Permissions: &api.ChatPermissions{
			CanSendMessages:       false,
			CanSendAudios:         false,
			CanSendDocuments:      false,
			CanSendPhotos:         false,
			CanSendVideos:         false,
			CanSendVideoNotes:     false,
			CanSendVoiceNotes:     false,
			CanSendPolls:          false,
			CanSendOtherMessages:  false,
			CanAddWebPagePreviews: false,
		},
	}
	if _, err := o.bot.Request(config); err != nil {
		return apiErr("restrict member", err)
	}
	return nil
}

// GetChatAdmins returns the chat administrators, served from a TTL cache.
func (o *Operations) GetChatAdmins(ctx context.Context, chatID int64) ([]api.ChatMember, error) {
	if admins, ok := o.admins.Get(chatID); ok {
		return admins, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	admins, err := o.bot.GetChatAdministrators(api.ChatAdministratorsConfig{
		ChatConfig: api.ChatConfig{
			ChatID: chatID,
		},
	})
	if err != nil {
		return nil, apiErr("get chat administrators", err)
	}
	o.admins.Add(chatID, admins)
	return admins, nil
}

// GetAdmin returns the member record of userID if they administer the chat, nil otherwise.
func (o *Operations) GetAdmin(ctx context.Context, chatID, userID int64) (*api.ChatMember, error) {
	admins, err := o.GetChatAdmins(ctx, chatID)
	if err != nil {
		return nil, err
	}
	for i := range admins {
		if admins[i].User != nil && admins[i].User.ID == userID {
			return &admins[i], nil
		}
	}
	return nil, nil
}

func (o *Operations) ForgetChatAdmins(chatID int64) {
	o.admins.Remove(chatID)
}

// GetStickerSetID returns the normalized set identifier of a sticker, or "" if it belongs to none.
func (o *Operations) GetStickerSetID(sticker *api.Sticker) string {
	if sticker == nil {
		return ""
	}
	return strings.ToLower(sticker.SetName)
}

// StickerSetExists asks the platform whether a set with the given name exists.
func (o *Operations) StickerSetExists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := o.bot.GetStickerSet(api.GetStickerSetConfig{Name: name})
	if err != nil {
		if strings.Contains(strings.ToUpper(err.Error()), "STICKERSET_INVALID") {
			return false, nil
		}
		return false, apiErr("get sticker set", err)
	}
	return true, nil
}

// Reply sends text to the chat as a reply to replyTo (0 for none) and returns the new message id.
func (o *Operations) Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := api.NewMessage(chatID, text)
	if replyTo != 0 {
		msg.ReplyParameters = api.ReplyParameters{
			ChatID:                   chatID,
			MessageID:                replyTo,
			AllowSendingWithoutReply: true,
		}
	}
	msg.DisableNotification = true
	msg.LinkPreviewOptions.IsDisabled = true
	sent, err := o.bot.Send(msg)
	if err != nil {
		return 0, apiErr("send message", err)
	}
	return sent.MessageID, nil
}
