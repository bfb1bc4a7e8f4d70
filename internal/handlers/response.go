package handlers

import "github.com/gofiber/fiber/v2"

// Error strings sent to clients.
const (
	MsgProductNotFound = "Product not found"
	MsgServerError     = "Server error"
	MsgInvalidBody     = "Invalid request body"
)

// Envelope is the JSON wrapper returned by every endpoint. Error holds a
// string or, for validation failures, a list of strings.
type Envelope struct {
	Success bool        `json:"success"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

func respondData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

func respondList(c *fiber.Ctx, data interface{}, count int) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Count: &count, Data: data})
}

// RespondError writes a failure envelope. msg is a string or []string.
func RespondError(c *fiber.Ctx, status int, msg interface{}) error {
	return c.Status(status).JSON(Envelope{Success: false, Error: msg})
}
