package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
	"github.com/Abdulkaium05/echo-backend/internal/presence"
	"github.com/Abdulkaium05/echo-backend/internal/service"
)

// Handlers bundles the service dependencies of the HTTP surface.
type Handlers struct {
	profiles   *service.ProfileService
	directory  *service.DirectoryService
	messages   *service.MessageService
	reactions  *service.ReactionService
	visibility *service.VisibilityService
	redemption *service.RedemptionService
	tracker    *presence.Tracker
	log        *zap.SugaredLogger
}

func NewHandlers(
	profiles *service.ProfileService,
	directory *service.DirectoryService,
	messages *service.MessageService,
	reactions *service.ReactionService,
	visibility *service.VisibilityService,
	redemption *service.RedemptionService,
	tracker *presence.Tracker,
	log *zap.SugaredLogger,
) *Handlers {
	return &Handlers{
		profiles:   profiles,
		directory:  directory,
		messages:   messages,
		reactions:  reactions,
		visibility: visibility,
		redemption: redemption,
		tracker:    tracker,
		log:        log,
	}
}

func callerID(c *fiber.Ctx) string {
	uid, _ := c.Locals("user_id").(string)
	return uid
}

// fail maps a domain error onto a status code and a human message.
func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyMessage):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrPermissionDenied), errors.Is(err, domain.ErrPerUserLimit):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrCodeExhausted):
		status = http.StatusGone
	case errors.Is(err, domain.ErrMessageDeleted):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrContention):
		// hide the retry mechanics from the client
		status, msg = http.StatusServiceUnavailable, "busy, please try again"
	case errors.Is(err, domain.ErrStorageUnavailable):
		status, msg = http.StatusServiceUnavailable, "temporarily unavailable"
	default:
		h.log.Errorw("unhandled error", "path", c.Path(), "err", err)
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// ---------- profiles ----------

func (h *Handlers) getProfile(c *fiber.Ctx) error {
	u, err := h.profiles.GetProfile(c.Context(), c.Params("user_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(u)
}

func (h *Handlers) updateProfile(c *fiber.Ctx) error {
	var req struct {
		DisplayName              *string             `json:"display_name"`
		AvatarURL                *string             `json:"avatar_url"`
		BadgeOrder               *[]domain.BadgeType `json:"badge_order"`
		SelectedVerifiedContacts *[]string           `json:"selected_verified_contacts"`
		AllowedNormalContacts    *[]string           `json:"allowed_normal_contacts"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	// entitlement flags are not editable over this endpoint; they move only
	// through redemption, gifting and operator tooling
	u, err := h.profiles.UpdateProfile(c.Context(), callerID(c), domain.ProfileUpdate{
		DisplayName:              req.DisplayName,
		AvatarURL:                req.AvatarURL,
		BadgeOrder:               req.BadgeOrder,
		SelectedVerifiedContacts: req.SelectedVerifiedContacts,
		AllowedNormalContacts:    req.AllowedNormalContacts,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(u)
}

// ---------- chats ----------

func (h *Handlers) createOrGetChat(c *fiber.Ctx) error {
	var req struct {
		OtherID string `json:"other_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	chat, err := h.directory.CreateOrGetChat(c.Context(), callerID(c), req.OtherID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(chat)
}

func (h *Handlers) listChats(c *fiber.Ctx) error {
	chats, err := h.visibility.ListVisibleChats(c.Context(), callerID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"chats": chats})
}

// ---------- messages ----------

func (h *Handlers) sendMessage(c *fiber.Ctx) error {
	var req struct {
		Text       string             `json:"text"`
		Attachment *domain.Attachment `json:"attachment"`
		ReplyToID  string             `json:"reply_to_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	msg, err := h.messages.Send(c.Context(), service.SendMessageInput{
		ChatID:     c.Params("chat_id"),
		SenderID:   callerID(c),
		Text:       req.Text,
		Attachment: req.Attachment,
		ReplyToID:  req.ReplyToID,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(msg)
}

func (h *Handlers) listMessages(c *fiber.Ctx) error {
	msgs, err := h.messages.List(c.Context(), c.Params("chat_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

func (h *Handlers) deleteMessage(c *fiber.Ctx) error {
	err := h.messages.SoftDelete(c.Context(), c.Params("chat_id"), c.Params("message_id"), callerID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

func (h *Handlers) markSeen(c *fiber.Ctx) error {
	if err := h.messages.MarkSeen(c.Context(), c.Params("chat_id"), callerID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *Handlers) toggleReaction(c *fiber.Ctx) error {
	var req struct {
		Emoji string `json:"emoji"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	err := h.reactions.Toggle(c.Context(), c.Params("chat_id"), c.Params("message_id"), req.Emoji, callerID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// ---------- redemption and gifting ----------

func (h *Handlers) redeemCode(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	res, err := h.redemption.Redeem(c.Context(), callerID(c), req.Code)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

func (h *Handlers) giftPoints(c *fiber.Ctx) error {
	var req struct {
		ReceiverID string `json:"receiver_id"`
		Amount     int64  `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	gift, err := h.profiles.GiftPoints(c.Context(), callerID(c), req.ReceiverID, req.Amount)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(gift)
}

func (h *Handlers) giftBadge(c *fiber.Ctx) error {
	var req struct {
		ReceiverID   string           `json:"receiver_id"`
		Badge        domain.BadgeType `json:"badge"`
		DurationDays int              `json:"duration_days"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	gift, err := h.profiles.GiftBadge(c.Context(), callerID(c), req.ReceiverID, req.Badge, req.DurationDays)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(gift)
}

// ---------- presence ----------

func (h *Handlers) touchPresence(c *fiber.Ctx) error {
	if err := h.tracker.Touch(c.Context(), callerID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *Handlers) presenceStatus(c *fiber.Ctx) error {
	st, err := h.tracker.Status(c.Context(), c.Params("user_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": st, "label": st.Label(time.Now())})
}
