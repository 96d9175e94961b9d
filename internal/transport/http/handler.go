package http

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"chessrules/internal/core"
	"chessrules/internal/processor"
)

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
}

func NewHTTPHandler(proc *processor.Processor) *HTTPHandler {
	return &HTTPHandler{proc: proc}
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.proc.Service().GetStorageHealth(),
	})
}

// reply writes a processor response with the matching status
func reply(c *fiber.Ctx, resp processor.ProcessorResponse, okStatus int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Data == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(okStatus).JSON(resp.Data)
}

func invalidGameID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid game ID format",
		Code:    core.ErrInvalidRequest,
		Details: "game ID must be a valid UUID",
	})
}

func validationBypass(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
		Error: "validation bypass detected",
		Code:  core.ErrInternalError,
	})
}

// gameID returns the validated :gameId parameter
func gameID(c *fiber.Ctx) (string, bool) {
	id := c.Params("gameId")
	return id, isValidUUID(id)
}

func playerID(c *fiber.Ctx) string {
	id, _ := c.Locals("playerID").(string)
	return id
}

// CreateGame starts a game. Protected games answer with one seat token per side.
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, ok := validatedBody[core.CreateGameRequest](c)
	if !ok {
		return validationBypass(c)
	}
	return reply(c, h.proc.Execute(processor.NewCreateGameCommand(req)), fiber.StatusCreated)
}

// GetGame retrieves current game state. With wait=true and the last seen
// version, the request is held until the game changes or the wait times out.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}

	if c.Query("wait", "false") != "true" {
		return reply(c, h.proc.Execute(processor.NewGetGameCommand(id)), fiber.StatusOK)
	}

	version, err := strconv.Atoi(c.Query("version", "-1"))
	if err != nil {
		version = -1
	}

	// Register before reading so a change in between is not missed
	ctx, cancel := context.WithCancel(c.Context())
	defer cancel()
	notify := h.proc.Service().RegisterWait(ctx, id, version)

	resp := h.proc.Execute(processor.NewGetGameCommand(id))
	if !resp.Success || resp.Data.(core.GameResponse).Version != version {
		return reply(c, resp, fiber.StatusOK)
	}

	select {
	case <-notify:
		// State changed, timed out or game removed
		return reply(c, h.proc.Execute(processor.NewGetGameCommand(id)), fiber.StatusOK)
	case <-ctx.Done():
		// Client disconnected
		return nil
	}
}

func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	return reply(c, h.proc.Execute(processor.NewDeleteGameCommand(id, playerID(c))), fiber.StatusNoContent)
}

// RestoreGame loads an archived game back into play
func (h *HTTPHandler) RestoreGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	return reply(c, h.proc.Execute(processor.NewRestoreGameCommand(id)), fiber.StatusOK)
}

func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	req, ok := validatedBody[core.MoveRequest](c)
	if !ok {
		return validationBypass(c)
	}
	return reply(c, h.proc.Execute(processor.NewMakeMoveCommand(id, playerID(c), req)), fiber.StatusOK)
}

func (h *HTTPHandler) UndoMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	req, ok := validatedBody[core.UndoRequest](c)
	if !ok {
		return validationBypass(c)
	}
	return reply(c, h.proc.Execute(processor.NewUndoMoveCommand(id, playerID(c), req)), fiber.StatusOK)
}

func (h *HTTPHandler) RedoMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	req, ok := validatedBody[core.RedoRequest](c)
	if !ok {
		return validationBypass(c)
	}
	return reply(c, h.proc.Execute(processor.NewRedoMoveCommand(id, playerID(c), req)), fiber.StatusOK)
}

func (h *HTTPHandler) Resign(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	req, ok := validatedBody[core.ResignRequest](c)
	if !ok {
		return validationBypass(c)
	}
	return reply(c, h.proc.Execute(processor.NewResignCommand(id, playerID(c), req)), fiber.StatusOK)
}

// Draw offers, accepts or declines a draw
func (h *HTTPHandler) Draw(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	req, ok := validatedBody[core.DrawRequest](c)
	if !ok {
		return validationBypass(c)
	}
	return reply(c, h.proc.Execute(processor.NewDrawCommand(id, playerID(c), req)), fiber.StatusOK)
}

// GetBoard returns ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	return reply(c, h.proc.Execute(processor.NewGetBoardCommand(id)), fiber.StatusOK)
}

// GetPGN returns the game record. Plain text is served when the client asks for it.
func (h *HTTPHandler) GetPGN(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	resp := h.proc.Execute(processor.NewGetPGNCommand(id))
	if resp.Success && c.Accepts(fiber.MIMEApplicationJSON, "application/x-chess-pgn") == "application/x-chess-pgn" {
		c.Set(fiber.HeaderContentType, "application/x-chess-pgn")
		return c.SendString(resp.Data.(core.PGNResponse).PGN)
	}
	return reply(c, resp, fiber.StatusOK)
}
