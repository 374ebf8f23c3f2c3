package detatest

import (
	"bytes"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beanbocchi/deta/pkg/response"
)

func (h *Handler) ListFiles(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			return fail(c, http.StatusBadRequest, "limit must be between 1 and 1000")
		}
		limit = n
	}
	prefix := c.QueryParam("prefix")
	last := c.QueryParam("last")

	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	names := make([]string, 0, len(h.s.files[c.Param("drive")]))
	for name := range h.s.files[c.Param("drive")] {
		if strings.HasPrefix(name, prefix) && (last == "" || name > last) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	page := response.FilePage{Names: names}
	if n := h.s.limit(limit); len(names) > n {
		page.Names = names[:n]
		next := page.Names[n-1]
		page.Paging.Last = &next
	}
	page.Paging.Size = len(page.Names)

	return c.JSON(http.StatusOK, page)
}

type DeleteFilesRequest struct {
	Names []string `json:"names" validate:"required,min=1,max=1000"`
}

func (h *Handler) DeleteFiles(c echo.Context) error {
	var req DeleteFilesRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	result := response.DeleteFilesResult{Deleted: []string{}}
	for _, name := range req.Names {
		delete(h.s.files[c.Param("drive")], name)
		result.Deleted = append(result.Deleted, name)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) PutFile(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}

	h.s.mu.Lock()
	h.s.putFile(c.Param("drive"), name, data)
	h.s.mu.Unlock()

	return c.JSON(http.StatusCreated, response.Upload{
		Name:      name,
		ProjectID: ProjectID,
		DriveName: c.Param("drive"),
	})
}

func (h *Handler) Download(c echo.Context) error {
	data, ok := h.s.File(c.Param("drive"), c.QueryParam("name"))
	if !ok {
		return fail(c, http.StatusNotFound, "File not found")
	}
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(data)))
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, bytes.NewReader(data))
}

func (h *Handler) InitiateUpload(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}

	session := response.UploadSession{
		UploadID:  uuid.NewString(),
		Name:      name,
		ProjectID: ProjectID,
		DriveName: c.Param("drive"),
	}

	h.s.mu.Lock()
	h.s.uploads[session.UploadID] = &upload{
		name:  name,
		drive: c.Param("drive"),
		parts: make(map[int][]byte),
	}
	h.s.mu.Unlock()

	return c.JSON(http.StatusAccepted, session)
}

func (h *Handler) UploadPart(c echo.Context) error {
	part, err := strconv.Atoi(c.QueryParam("part"))
	if err != nil || part < 1 {
		return fail(c, http.StatusBadRequest, "part must be a positive number")
	}
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}

	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	up, ok := h.s.uploads[c.Param("id")]
	if !ok || up.name != c.QueryParam("name") {
		return fail(c, http.StatusNotFound, "Upload not found")
	}
	if h.s.failParts[part] {
		return fail(c, http.StatusInternalServerError, "Failed to store part "+strconv.Itoa(part))
	}
	up.parts[part] = data

	return c.JSON(http.StatusOK, response.UploadPart{
		Name:      up.name,
		UploadID:  c.Param("id"),
		Part:      part,
		ProjectID: ProjectID,
		DriveName: up.drive,
	})
}

func (h *Handler) CompleteUpload(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}

	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	up, ok := h.s.uploads[c.Param("id")]
	if !ok || up.name != c.QueryParam("name") {
		return fail(c, http.StatusNotFound, "Upload not found")
	}
	if h.s.failComplete {
		return fail(c, http.StatusInternalServerError, "Failed to complete upload")
	}

	var buf bytes.Buffer
	for i := 1; i <= len(up.parts); i++ {
		p, ok := up.parts[i]
		if !ok {
			return fail(c, http.StatusBadRequest, "Missing part "+strconv.Itoa(i))
		}
		buf.Write(p)
	}
	buf.Write(data)

	h.s.putFile(up.drive, up.name, buf.Bytes())
	delete(h.s.uploads, c.Param("id"))

	return c.JSON(http.StatusOK, response.Upload{
		Name:      up.name,
		ProjectID: ProjectID,
		DriveName: up.drive,
	})
}

func (h *Handler) AbortUpload(c echo.Context) error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	up, ok := h.s.uploads[c.Param("id")]
	if !ok || up.name != c.QueryParam("name") {
		return fail(c, http.StatusNotFound, "Upload not found")
	}
	delete(h.s.uploads, c.Param("id"))
	h.s.aborted = append(h.s.aborted, c.Param("id"))

	return c.JSON(http.StatusOK, response.UploadSession{
		UploadID:  c.Param("id"),
		Name:      up.name,
		ProjectID: ProjectID,
		DriveName: up.drive,
	})
}
