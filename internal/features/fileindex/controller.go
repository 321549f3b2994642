package fileindex

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type FileIndexController struct {
	FileIndexService FileIndexService
}

func NewFileIndexController(fileIndexService FileIndexService) *FileIndexController {
	return &FileIndexController{
		FileIndexService: fileIndexService,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidRecording):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ListRecordings godoc
// @Summary List recordings
// @Description Get every EEG recording known to the file index, newest first
// @Tags files
// @Produce json
// @Success 200 {array} Recording
// @Failure 500 {object} map[string]interface{}
// @Router /api/files [get]
func (ctrl *FileIndexController) ListRecordings(c *fiber.Ctx) error {
	recs, err := ctrl.FileIndexService.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if recs == nil {
		recs = []*Recording{}
	}
	return c.JSON(recs)
}

// GetRecording godoc
// @Summary Get recording
// @Tags files
// @Produce json
// @Param id path string true "Recording ID"
// @Success 200 {object} Recording
// @Failure 404 {object} map[string]interface{}
// @Router /api/files/{id} [get]
func (ctrl *FileIndexController) GetRecording(c *fiber.Ctx) error {
	rec, err := ctrl.FileIndexService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rec)
}

// GetChannels godoc
// @Summary List recording channels
// @Tags files
// @Produce json
// @Param id path string true "Recording ID"
// @Success 200 {array} string
// @Failure 404 {object} map[string]interface{}
// @Router /api/files/{id}/channels [get]
func (ctrl *FileIndexController) GetChannels(c *fiber.Ctx) error {
	channels, err := ctrl.FileIndexService.Channels(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(channels)
}

// RegisterRecording godoc
// @Summary Register recording
// @Description Add an EEG recording to the file index
// @Tags files
// @Accept json
// @Produce json
// @Param recording body Recording true "Recording"
// @Success 201 {object} Recording
// @Failure 400 {object} map[string]interface{}
// @Router /api/files [post]
func (ctrl *FileIndexController) RegisterRecording(c *fiber.Ctx) error {
	var rec Recording
	if err := c.BodyParser(&rec); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := ctrl.FileIndexService.Register(c.UserContext(), &rec); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// DeleteRecording godoc
// @Summary Remove recording
// @Tags files
// @Param id path string true "Recording ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/files/{id} [delete]
func (ctrl *FileIndexController) DeleteRecording(c *fiber.Ctx) error {
	if err := ctrl.FileIndexService.Remove(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
