package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/application/i18n"
	domaini18n "github.com/shopfront/backend/internal/domain/i18n"
)

// LanguageHandler manages storefront languages
type LanguageHandler struct {
	BaseHandler
	languageService *i18n.LanguageService
}

// NewLanguageHandler creates a new language handler
func NewLanguageHandler(languageService *i18n.LanguageService) *LanguageHandler {
	return &LanguageHandler{languageService: languageService}
}

// List godoc
// @Summary      List languages
// @Tags         languages
// @Produce      json
// @Success      200 {object} dto.Response{data=[]i18n.LanguageResponse}
// @Security     BearerAuth
// @Router       /admin/languages [get]
func (h *LanguageHandler) List(c *gin.Context) {
	h.list(c, false)
}

// StoreList godoc
// @Summary      Active storefront languages
// @Tags         store-i18n
// @Produce      json
// @Success      200 {object} dto.Response{data=[]i18n.LanguageResponse}
// @Router       /store/languages [get]
func (h *LanguageHandler) StoreList(c *gin.Context) {
	h.list(c, true)
}

func (h *LanguageHandler) list(c *gin.Context, activeOnly bool) {
	languages, err := h.languageService.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, languages)
}

// Get godoc
// @Summary      Get a language
// @Tags         languages
// @Produce      json
// @Param        code path string true "Language code"
// @Success      200 {object} dto.Response{data=i18n.LanguageResponse}
// @Security     BearerAuth
// @Router       /admin/languages/{code} [get]
func (h *LanguageHandler) Get(c *gin.Context) {
	lang, err := h.languageService.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lang)
}

// Create godoc
// @Summary      Add a language
// @Description  The first language becomes the default
// @Tags         languages
// @Accept       json
// @Produce      json
// @Param        request body i18n.CreateLanguageRequest true "Language"
// @Success      201 {object} dto.Response{data=i18n.LanguageResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/languages [post]
func (h *LanguageHandler) Create(c *gin.Context) {
	var req i18n.CreateLanguageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	lang, err := h.languageService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lang)
}

// Update godoc
// @Summary      Update a language
// @Tags         languages
// @Accept       json
// @Produce      json
// @Param        code    path string                     true "Language code"
// @Param        request body i18n.UpdateLanguageRequest true "Changes"
// @Success      200 {object} dto.Response{data=i18n.LanguageResponse}
// @Security     BearerAuth
// @Router       /admin/languages/{code} [put]
func (h *LanguageHandler) Update(c *gin.Context) {
	var req i18n.UpdateLanguageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	lang, err := h.languageService.Update(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lang)
}

// SetDefault godoc
// @Summary      Make a language the default
// @Tags         languages
// @Param        code path string true "Language code"
// @Success      200 {object} dto.Response{data=i18n.LanguageResponse}
// @Security     BearerAuth
// @Router       /admin/languages/{code}/default [post]
func (h *LanguageHandler) SetDefault(c *gin.Context) {
	lang, err := h.languageService.SetDefault(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lang)
}

// Delete godoc
// @Summary      Delete a language and its translations
// @Tags         languages
// @Param        code path string true "Language code"
// @Success      204
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/languages/{code} [delete]
func (h *LanguageHandler) Delete(c *gin.Context) {
	if err := h.languageService.Delete(c.Request.Context(), c.Param("code")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// TranslationHandler manages UI strings
type TranslationHandler struct {
	BaseHandler
	translationService *i18n.TranslationService
}

// NewTranslationHandler creates a new translation handler
func NewTranslationHandler(translationService *i18n.TranslationService) *TranslationHandler {
	return &TranslationHandler{translationService: translationService}
}

// List godoc
// @Summary      List translations
// @Tags         translations
// @Produce      json
// @Param        language  query string false "Language code"
// @Param        namespace query string false "Namespace"
// @Param        search    query string false "Key or value"
// @Param        missing   query bool   false "Only keys missing in the language"
// @Success      200 {object} dto.Response{data=[]i18n.TranslationResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/translations [get]
func (h *TranslationHandler) List(c *gin.Context) {
	var filter i18n.TranslationListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.translationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Upsert godoc
// @Summary      Create or replace a translation
// @Tags         translations
// @Accept       json
// @Produce      json
// @Param        request body i18n.UpsertTranslationRequest true "Translation"
// @Success      200 {object} dto.Response{data=i18n.TranslationResponse}
// @Security     BearerAuth
// @Router       /admin/translations [put]
func (h *TranslationHandler) Upsert(c *gin.Context) {
	var req i18n.UpsertTranslationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	t, err := h.translationService.Upsert(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, t)
}

// BulkUpsert godoc
// @Summary      Create or replace many translations
// @Tags         translations
// @Accept       json
// @Produce      json
// @Param        request body i18n.BulkUpsertRequest true "Translations"
// @Success      200 {object} dto.Response{data=i18n.ImportResult}
// @Security     BearerAuth
// @Router       /admin/translations/bulk [post]
func (h *TranslationHandler) BulkUpsert(c *gin.Context) {
	var req i18n.BulkUpsertRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.translationService.BulkUpsert(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Import godoc
// @Summary      Import a translation document
// @Description  Nested objects are flattened into dotted keys
// @Tags         translations
// @Accept       json
// @Produce      json
// @Param        request body i18n.ImportRequest true "Document"
// @Success      200 {object} dto.Response{data=i18n.ImportResult}
// @Security     BearerAuth
// @Router       /admin/translations/import [post]
func (h *TranslationHandler) Import(c *gin.Context) {
	var req i18n.ImportRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.translationService.Import(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Export godoc
// @Summary      Export translations
// @Description  Returns the flat key/value map; download=true serves it as a file
// @Tags         translations
// @Produce      json
// @Param        language  query string true  "Language code"
// @Param        namespace query string false "Namespace"
// @Param        download  query bool   false "Serve as attachment"
// @Success      200 {object} dto.Response{data=map[string]string}
// @Security     BearerAuth
// @Router       /admin/translations/export [get]
func (h *TranslationHandler) Export(c *gin.Context) {
	var q struct {
		Language  string `form:"language" binding:"required"`
		Namespace string `form:"namespace"`
		Download  bool   `form:"download"`
	}
	if !h.bindQuery(c, &q) {
		return
	}
	values, err := h.translationService.Export(c.Request.Context(), q.Language, q.Namespace)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if q.Download {
		namespace := q.Namespace
		if namespace == "" {
			namespace = domaini18n.DefaultNamespace
		}
		c.Header("Content-Disposition", `attachment; filename="`+q.Language+"-"+namespace+`.json"`)
		c.JSON(http.StatusOK, values)
		return
	}
	h.Success(c, values)
}

// Missing godoc
// @Summary      Keys missing in a language
// @Tags         translations
// @Produce      json
// @Param        language  query string true  "Language code"
// @Param        namespace query string false "Namespace; empty checks all"
// @Success      200 {object} dto.Response{data=[]i18n.MissingTranslation}
// @Security     BearerAuth
// @Router       /admin/translations/missing [get]
func (h *TranslationHandler) Missing(c *gin.Context) {
	var q struct {
		Language  string `form:"language" binding:"required"`
		Namespace string `form:"namespace"`
	}
	if !h.bindQuery(c, &q) {
		return
	}
	missing, err := h.translationService.Missing(c.Request.Context(), q.Language, q.Namespace)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, missing)
}

// Delete godoc
// @Summary      Delete a translation
// @Tags         translations
// @Param        id path string true "Translation ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/translations/{id} [delete]
func (h *TranslationHandler) Delete(c *gin.Context) {
	id, ok := h.paramUUID(c, "id", "translation")
	if !ok {
		return
	}
	if err := h.translationService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Bundle godoc
// @Summary      Storefront translation bundle
// @Description  Nested strings of one namespace; missing keys fall back to the default language
// @Tags         store-i18n
// @Produce      json
// @Param        lang      path string true "Language code"
// @Param        namespace path string true "Namespace"
// @Success      200 {object} dto.Response{data=map[string]interface{}}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/translations/{lang}/{namespace} [get]
func (h *TranslationHandler) Bundle(c *gin.Context) {
	bundle, err := h.translationService.Bundle(c.Request.Context(), c.Param("lang"), c.Param("namespace"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=60")
	h.Success(c, bundle)
}
