package detatest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/beanbocchi/deta/pkg/model"
	"github.com/beanbocchi/deta/pkg/response"
	"github.com/beanbocchi/deta/pkg/validator"
)

// NewEcho builds the echo instance serving both APIs from s.
func NewEcho(s *Server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	customVal, err := validator.New()
	if err != nil {
		panic(err)
	}
	e.Validator = customVal
	e.JSONSerializer = sonicSerializer{}
	e.HTTPErrorHandler = errorHandler

	SetupRoute(e, s)
	return e
}

type Handler struct {
	s *Server
}

func SetupRoute(e *echo.Echo, s *Server) {
	h := &Handler{s: s}

	base := e.Group("/base/v1/:project/:base", h.authorize, h.recordRequest)
	base.GET("/items/:key", h.GetItem)
	base.PUT("/items", h.PutItems)
	base.POST("/items", h.InsertItem)
	base.PATCH("/items/:key", h.UpdateItem)
	base.DELETE("/items/:key", h.DeleteItem)
	base.POST("/query", h.Query)

	drive := e.Group("/drive/v1/:project/:drive", h.authorize, h.recordRequest)
	drive.GET("/files", h.ListFiles)
	drive.DELETE("/files", h.DeleteFiles)
	drive.POST("/files", h.PutFile)
	drive.GET("/files/download", h.Download)
	drive.POST("/uploads", h.InitiateUpload)
	drive.POST("/uploads/:id/parts", h.UploadPart)
	drive.PATCH("/uploads/:id", h.CompleteUpload)
	drive.DELETE("/uploads/:id", h.AbortUpload)
}

func (h *Handler) authorize(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get("X-API-Key") != ProjectKey || c.Param("project") != ProjectID {
			return fail(c, http.StatusUnauthorized, "Unauthorized")
		}
		return next(c)
	}
}

func (h *Handler) recordRequest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// path below /{base|drive}/v1/{project}/{name}
		parts := strings.SplitN(c.Request().URL.Path, "/", 6)
		path := "/"
		if len(parts) == 6 {
			path += parts[5]
		}
		h.s.record(Request{
			Method: c.Request().Method,
			Path:   path,
			Query:  c.QueryParams(),
		})
		return next(c)
	}
}

func fail(c echo.Context, status int, msgs ...string) error {
	return c.JSON(status, response.ErrorResponse{Errors: msgs})
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := err.Error()

	var he *echo.HTTPError
	var me model.Error
	switch {
	case errors.As(err, &he):
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	case errors.As(err, &me):
		status = http.StatusBadRequest
		msg = me.Message
	}
	_ = fail(c, status, msg)
}

type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i any) error {
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body").SetInternal(err)
	}
	return nil
}
