package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"productapi/internal/errs"
	"productapi/internal/models"
)

// ProductGateway is the persistence gateway the handler delegates to.
type ProductGateway interface {
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateByID(ctx context.Context, id string, patch models.ProductInput) (*models.Product, error)
	DeleteByID(ctx context.Context, id string) error
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	gateway ProductGateway
	logger  zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(gateway ProductGateway, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		gateway: gateway,
		logger:  logger.With().Str("component", "product_handler").Logger(),
	}
}

// RegisterRoutes registers the product routes under router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts lists all products with their count.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.gateway.FindAll(c.UserContext())
	if err != nil {
		return h.fail(c, "list products", err)
	}
	return respondList(c, products, len(products))
}

// HandleGetProduct returns a single product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.gateway.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, "get product", err)
	}
	return respondData(c, fiber.StatusOK, product)
}

// HandleCreateProduct creates a product from the request body.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	in, ok, err := h.parseInput(c)
	if !ok {
		return err
	}

	product, err := h.gateway.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, "create product", err)
	}
	return respondData(c, fiber.StatusCreated, product)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	patch, ok, err := h.parseInput(c)
	if !ok {
		return err
	}

	product, err := h.gateway.UpdateByID(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return h.fail(c, "update product", err)
	}
	return respondData(c, fiber.StatusOK, product)
}

// HandleDeleteProduct deletes a product and responds 204 with no body.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.gateway.DeleteByID(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, "delete product", err)
	}
	c.Status(fiber.StatusNoContent)
	return nil
}

// parseInput decodes the request body. When ok is false the failure
// response has already been written and err is the result of writing it.
func (h *ProductHandler) parseInput(c *fiber.Ctx) (in models.ProductInput, ok bool, err error) {
	if len(c.Body()) == 0 {
		return in, true, nil
	}
	if perr := c.BodyParser(&in); perr != nil {
		if verr := models.PayloadError(perr); verr != nil {
			return in, false, h.fail(c, "parse product", verr)
		}
		h.requestLogger(c).Debug().Err(perr).Msg("invalid request body")
		return in, false, RespondError(c, fiber.StatusBadRequest, MsgInvalidBody)
	}
	return in, true, nil
}

// fail maps a gateway error to its status and envelope.
func (h *ProductHandler) fail(c *fiber.Ctx, op string, err error) error {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		msgs := make([]string, 0)
		for _, v := range errs.Violations(err) {
			msgs = append(msgs, v.Message)
		}
		return RespondError(c, fiber.StatusBadRequest, msgs)
	case errs.KindNotFound:
		return RespondError(c, fiber.StatusNotFound, MsgProductNotFound)
	case errs.KindGateway:
	}

	h.requestLogger(c).Error().Err(err).Str("op", op).Msg("product gateway failure")
	return RespondError(c, fiber.StatusInternalServerError, MsgServerError)
}

func (h *ProductHandler) requestLogger(c *fiber.Ctx) *zerolog.Logger {
	l := h.logger.With().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Logger()
	return &l
}
