package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-web-rag/internal/service"
)

// RAGHandler handles the ingest and ask endpoints.
type RAGHandler struct {
	ragService *service.RAGService
}

// NewRAGHandler creates a new RAG handler.
func NewRAGHandler(ragService *service.RAGService) *RAGHandler {
	return &RAGHandler{ragService: ragService}
}

// Register sets up the RAG routes.
func (h *RAGHandler) Register(router fiber.Router) {
	router.Post("/ingest", h.Ingest)
	router.Post("/ask", h.Ask)
}

// Ingest fetches a URL, chunks and embeds its text, and stores the chunks.
func (h *RAGHandler) Ingest(c fiber.Ctx) error {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url is required"})
	}

	count, err := h.ragService.Ingest(c.Context(), body.URL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("ingested %d chunks from %s", count, body.URL),
	})
}

// Ask answers a question over the ingested corpus.
func (h *RAGHandler) Ask(c fiber.Ctx) error {
	var body struct {
		Question string `json:"question"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "question is required"})
	}

	answer, err := h.ragService.Ask(c.Context(), body.Question)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"answer": answer})
}
