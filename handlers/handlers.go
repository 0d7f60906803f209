package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/Yapcheekian/shrt/allocator"
	"github.com/Yapcheekian/shrt/middlewares"
	"github.com/Yapcheekian/shrt/models"
	"github.com/Yapcheekian/shrt/store"
	"github.com/gin-gonic/gin"
)

const (
	msgRequired      = "This field is required."
	msgInvalidURL    = "Enter a valid URL."
	msgNotFound      = "Short code not found."
	msgExhausted     = "Failed to generate a unique short code. Please try again."
	msgInternalError = "Internal server error."
)

var regex = regexp.MustCompile("^(http|https)://")

// Shortener is the core the handlers delegate to.
type Shortener interface {
	Allocate(ctx context.Context, originalURL string) (models.ShortLink, error)
	Resolve(ctx context.Context, shortCode string) (models.ShortLink, error)
	Ping(ctx context.Context) error
}

var _ Shortener = (*allocator.Allocator)(nil)

type ShortenerHandler struct {
	shortener Shortener
	baseURL   string
}

// NewShortenerHandler registers the shortener routes on router. An empty
// baseURL makes short URLs use the scheme and host of the incoming request.
func NewShortenerHandler(router gin.IRouter, shortener Shortener, baseURL string) {
	handler := &ShortenerHandler{
		shortener: shortener,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}

	router.POST("/shorten/", handler.ShortenURL)
	router.GET("/expand/:code/", handler.ExpandURL)
	router.GET("/shrt/:code/", handler.RedirectURL)
	router.GET("/health", handler.Health)
}

type urlRequest struct {
	URL string `json:"url" binding:"required,url"`
}

type urlResponse struct {
	ShortURL string `json:"short_url"`
}

type expandResponse struct {
	OriginalURL string `json:"original_url"`
}

// ShortenURL allocates a new short code for the uploaded URL. The same URL
// shortened twice gets two independent codes.
func (h *ShortenerHandler) ShortenURL(c *gin.Context) {
	var urlRequest urlRequest

	if err := c.ShouldBindJSON(&urlRequest); err != nil {
		logf(c, "ShouldBindJSON failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"url": []string{urlFieldError(urlRequest.URL)}})
		return
	}

	if err := validateURL(urlRequest.URL); err != nil {
		logf(c, "validateURL failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"url": []string{msgInvalidURL}})
		return
	}

	link, err := h.shortener.Allocate(c.Request.Context(), urlRequest.URL)
	if errors.Is(err, allocator.ErrAllocationExhausted) {
		logf(c, "Allocate exhausted: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgExhausted})
		return
	}
	if err != nil {
		logf(c, "Allocate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
		return
	}

	c.JSON(http.StatusCreated, urlResponse{
		ShortURL: fmt.Sprintf("%s/shrt/%s", h.base(c.Request), link.ShortCode),
	})
}

func (h *ShortenerHandler) ExpandURL(c *gin.Context) {
	link, err := h.shortener.Resolve(c.Request.Context(), c.Param("code"))

	var scErr *models.ShortCodeError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, expandResponse{OriginalURL: link.OriginalURL})
	case errors.As(err, &scErr):
		c.JSON(http.StatusBadRequest, gin.H{"short_code": []string{scErr.Reason}})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	default:
		logf(c, "Resolve failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
	}
}

// RedirectURL answers 302 to the original URL. Malformed codes can never
// exist, so they are reported as not found.
func (h *ShortenerHandler) RedirectURL(c *gin.Context) {
	link, err := h.shortener.Resolve(c.Request.Context(), c.Param("code"))

	switch {
	case err == nil:
		c.Redirect(http.StatusFound, link.OriginalURL)
	case errors.Is(err, models.ErrInvalidShortCode), errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	default:
		logf(c, "Resolve failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
	}
}

func (h *ShortenerHandler) Health(c *gin.Context) {
	if err := h.shortener.Ping(c.Request.Context()); err != nil {
		logf(c, "Ping failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *ShortenerHandler) base(req *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	return parseServerHost(req)
}

func parseServerHost(req *http.Request) string {
	var scheme string
	if req.TLS == nil {
		scheme = "http"
	} else {
		scheme = "https"
	}

	host := req.Host

	return scheme + "://" + host
}

func urlFieldError(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return msgRequired
	}
	return msgInvalidURL
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}

	// net/url.Parse does not throw error even if
	// input url does not contains scheme
	// so we manually check it
	if !regex.MatchString(raw) {
		return errors.New("scheme is required in URL format")
	}

	if u.Host == "" {
		return errors.New("host is required in URL format")
	}

	return nil
}

func logf(c *gin.Context, format string, args ...interface{}) {
	if id := middlewares.GetRequestID(c); id != "" {
		format = "[" + id + "] " + format
	}
	log.Printf(format, args...)
}
