package handler

import (
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/dimmy-bit/MONOSWAP/internal/session"
	"github.com/dimmy-bit/MONOSWAP/internal/view"
)

type SessionHandler struct {
	BaseHandler
	store *session.Store
}

func NewSessionHandler(logger *slog.Logger, store *session.Store) *SessionHandler {
	return &SessionHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		store: store,
	}
}

type OpenSessionRequest struct {
	Owner  string `json:"owner"`
	First  string `json:"first"`
	Second string `json:"second"`
}

// EventRequest is a user event. Type "owner" attaches a wallet; the other
// types are view events.
type EventRequest struct {
	Type  string `json:"type"`
	Side  string `json:"side"`
	Value string `json:"value"`
}

type SubmitRequest struct {
	Action string `json:"action"`
}

// Open creates a session of the kind named in the path.
func (h *SessionHandler) Open() fiber.Handler {
	return func(c fiber.Ctx) error {
		kind, err := session.ParseKind(c.Params("kind"))
		if err != nil {
			return h.handleServiceError(err)
		}

		var req OpenSessionRequest
		if len(c.Body()) > 0 {
			if err := c.Bind().JSON(&req); err != nil {
				return ErrInvalidBody
			}
		}
		var owner common.Address
		if req.Owner != "" {
			if owner, err = parseAddress("owner", req.Owner); err != nil {
				return err
			}
		}

		s, err := h.store.Open(kind, owner, req.First, req.Second)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(s.Snapshot())
	}
}

// Get returns the session state.
func (h *SessionHandler) Get() fiber.Handler {
	return func(c fiber.Ctx) error {
		s, err := h.session(c)
		if err != nil {
			return err
		}
		return c.JSON(s.Snapshot())
	}
}

// Dispatch applies one event to the session.
func (h *SessionHandler) Dispatch() fiber.Handler {
	return func(c fiber.Ctx) error {
		s, err := h.session(c)
		if err != nil {
			return err
		}
		var req EventRequest
		if err := c.Bind().JSON(&req); err != nil {
			return ErrInvalidBody
		}

		var snap session.Snapshot
		if req.Type == "owner" {
			var owner common.Address
			if req.Value != "" {
				if owner, err = parseAddress("owner", req.Value); err != nil {
					return err
				}
			}
			snap, err = s.SetOwner(owner)
		} else {
			ev, perr := view.UserEvent(req.Type, req.Side, req.Value)
			if perr != nil {
				return h.handleServiceError(perr)
			}
			snap, err = s.Dispatch(ev)
		}
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(snap)
	}
}

// Submit starts the session's transaction. Progress is visible through Get.
func (h *SessionHandler) Submit() fiber.Handler {
	return func(c fiber.Ctx) error {
		s, err := h.session(c)
		if err != nil {
			return err
		}
		var req SubmitRequest
		if len(c.Body()) > 0 {
			if err := c.Bind().JSON(&req); err != nil {
				return ErrInvalidBody
			}
		}
		snap, err := s.Submit(req.Action)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.Status(fiber.StatusAccepted).JSON(snap)
	}
}

// Close releases the session.
func (h *SessionHandler) Close() fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrSessionNotFound
		}
		if err := h.store.Close(id); err != nil {
			return h.handleServiceError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func (h *SessionHandler) session(c fiber.Ctx) (*session.Session, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, ErrSessionNotFound
	}
	s, err := h.store.Get(id)
	if err != nil {
		return nil, h.handleServiceError(err)
	}
	return s, nil
}
