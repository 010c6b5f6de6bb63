package handlers

import (
	"net/http"

	"wuauser/middleware"
	"wuauser/models"
	"wuauser/services/pet"
	"wuauser/services/storage"
	"wuauser/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PetHandler struct {
	svc    pet.PetService
	logger *zap.Logger
}

func NewPetHandler(svc pet.PetService, logger *zap.Logger) *PetHandler {
	return &PetHandler{svc: svc, logger: logger.Named("pet-handler")}
}

func (h *PetHandler) CreatePetHandler(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	var input models.PetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid pet payload", err)
		return
	}

	p, err := h.svc.Create(c.Request.Context(), actor.ID, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PetHandler) ListPetsHandler(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	pets, err := h.svc.ListForOwner(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if pets == nil {
		pets = []models.Pet{}
	}
	c.JSON(http.StatusOK, gin.H{"pets": pets})
}

// UploadPhotoHandler accepts a multipart "file" field and stores it as the pet's photo.
func (h *PetHandler) UploadPhotoHandler(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Missing file", err)
		return
	}
	if fh.Size > storage.MaxPhotoBytes {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "Photo too large", "")
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "Could not read file", err)
		return
	}
	defer f.Close()

	p, err := h.svc.UploadPhoto(c.Request.Context(), actor, c.Param("id"), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
