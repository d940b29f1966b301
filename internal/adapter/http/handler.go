package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"jobfolio/internal/adapter/repository"
	"jobfolio/internal/editor"
	"jobfolio/internal/layout"
	"jobfolio/internal/model"
	"jobfolio/internal/render"
	"jobfolio/internal/schema"
	"jobfolio/internal/usecase"
	"jobfolio/pkg/backend"
)

// Snapshotter turns rendered HTML into images and documents.
type Snapshotter interface {
	Snapshot(ctx context.Context, html string, width int) ([]byte, error)
	PDF(ctx context.Context, html string) ([]byte, error)
}

// Generator produces a portfolio from a résumé.
type Generator interface {
	Generate(ctx context.Context, resumeMarkdown string) (usecase.Generation, error)
}

type Deps struct {
	// Store backs the portfolio views: the backend client or a repository.
	Store usecase.Store
	// Repo enables the standalone /api/v1/portfolio routes.
	Repo         repository.PortfolioRepo
	Generator    Generator
	Snapshotter  Snapshotter
	Renderer     *render.Renderer
	Log          *zap.Logger
	DefaultWidth int
	EditorOpts   []editor.Option
}

type Handler struct {
	store        usecase.Store
	repo         repository.PortfolioRepo
	generator    Generator
	snapshotter  Snapshotter
	renderer     *render.Renderer
	log          *zap.Logger
	defaultWidth int
	editorOpts   []editor.Option
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		store:        d.Store,
		repo:         d.Repo,
		generator:    d.Generator,
		snapshotter:  d.Snapshotter,
		renderer:     d.Renderer,
		log:          d.Log,
		defaultWidth: d.DefaultWidth,
		editorOpts:   d.EditorOpts,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.renderer == nil {
		h.renderer = render.NewRenderer(h.log)
	}
	if h.defaultWidth <= 0 {
		h.defaultWidth = layout.PreviewWidth(layout.DeviceDesktop)
	}
	return h
}

// NewApp builds the fiber app with every route registered.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "jobfolio",
		ErrorHandler:          h.errorHandler,
		DisableStartupMessage: true,
	})
	app.Use(fiberrecover.New())
	app.Use(h.requestLogger("/healthz", "/metrics"))
	h.Register(app)
	return app
}

func (h *Handler) Register(app *fiber.App) {
	app.Get("/healthz", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	p := app.Group("/portfolios/:id")
	p.Get("/schema", h.Schema)
	p.Get("/preview", h.Preview)
	p.Get("/tree", h.Tree)
	p.Get("/snapshot", h.Snapshot)
	p.Get("/export.pdf", h.ExportPDF)
	p.Post("/edits", h.Edits)

	if h.generator != nil {
		app.Post("/generation", h.Generate)
	}

	if h.repo != nil {
		api := app.Group("/api/v1/portfolio")
		api.Get("/sample", h.Sample)
		api.Post("/", h.CreatePortfolio)
		api.Get("/:id", h.GetPortfolio)
		api.Patch("/:id", h.UpdatePortfolio)
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// view loads the portfolio named in the path into a fresh view, sized from
// the device, width and menu query parameters.
func (h *Handler) view(c *fiber.Ctx) (*usecase.View, error) {
	device := layout.ParseDeviceSize(c.Query("device"))
	width := c.QueryInt("width", 0)
	if width <= 0 {
		width = h.defaultWidth
		if device != layout.DeviceNone {
			width = layout.PreviewWidth(device)
		}
	}

	v := usecase.NewView(h.store,
		usecase.WithDevice(device, width),
		usecase.WithRenderer(h.renderer),
		usecase.WithLogger(h.log.With(zap.String("request_id", RequestID(c)))),
		usecase.WithEditorOptions(h.editorOpts...),
	)
	if _, err := v.Load(c.UserContext(), c.Params("id")); err != nil {
		v.Close()
		return nil, err
	}
	v.SetMenu(c.QueryBool("menu", false))
	return v, nil
}

func (h *Handler) Schema(c *fiber.Ctx) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	defer v.Close()
	s, err := v.Draft()
	if err != nil {
		return err
	}
	return c.JSON(schema.Canonical(s))
}

func (h *Handler) page(c *fiber.Ctx) (render.Page, error) {
	v, err := h.view(c)
	if err != nil {
		return render.Page{}, err
	}
	defer v.Close()
	return v.Render()
}

func renderHTML(p render.Page) (string, error) {
	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (h *Handler) Preview(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	html, err := renderHTML(p)
	if err != nil {
		return err
	}
	c.Set("X-Render-Branch", string(p.Branch))
	c.Type("html", "utf-8")
	return c.SendString(html)
}

func (h *Handler) Tree(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *Handler) Snapshot(c *fiber.Ctx) error {
	if h.snapshotter == nil {
		return problem(c, fiber.StatusServiceUnavailable, ProblemTypeUnavailable, "Service Unavailable", "snapshots are not enabled")
	}
	p, err := h.page(c)
	if err != nil {
		return err
	}
	html, err := renderHTML(p)
	if err != nil {
		return err
	}
	width := c.QueryInt("width", 0)
	if width <= 0 {
		width = layout.PreviewWidth(layout.ParseDeviceSize(c.Query("device")))
	}
	png, err := h.snapshotter.Snapshot(c.UserContext(), html, width)
	if err != nil {
		return err
	}
	c.Type("png")
	return c.Send(png)
}

func (h *Handler) ExportPDF(c *fiber.Ctx) error {
	if h.snapshotter == nil {
		return problem(c, fiber.StatusServiceUnavailable, ProblemTypeUnavailable, "Service Unavailable", "pdf export is not enabled")
	}
	p, err := h.page(c)
	if err != nil {
		return err
	}
	html, err := renderHTML(p)
	if err != nil {
		return err
	}
	pdf, err := h.snapshotter.PDF(c.UserContext(), html)
	if err != nil {
		return err
	}
	c.Type("pdf")
	c.Attachment(c.Params("id") + ".pdf")
	return c.Send(pdf)
}

type editsReq struct {
	Ops []editor.Op `json:"ops"`
}

// Edits applies a batch of edits to a fresh draft and saves it. When the
// save fails the response carries the unsaved draft.
func (h *Handler) Edits(c *fiber.Ctx) error {
	var req editsReq
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if len(req.Ops) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no edit operations")
	}

	v, err := h.view(c)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.Edit(req.Ops...); err != nil {
		return err
	}
	saved, err := v.Save(c.UserContext())
	if err != nil {
		if errors.Is(err, editor.ErrInvalidDocument) {
			return err
		}
		draft, derr := v.Draft()
		if derr != nil {
			return err
		}
		h.log.Warn("edit save failed",
			zap.String("portfolio_id", c.Params("id")),
			zap.Int("ops", len(req.Ops)),
			zap.Error(err),
		)
		return writeProblem(c, saveProblem{
			Problem: Problem{
				Type:     ProblemTypeSaveFailed,
				Title:    "Bad Gateway",
				Status:   fiber.StatusBadGateway,
				Detail:   err.Error(),
				Instance: c.Path(),
			},
			Draft: schema.Canonical(draft),
		}, fiber.StatusBadGateway)
	}
	return c.JSON(schema.Canonical(saved))
}

type generateReq struct {
	ResumeMarkdown string `json:"resume_markdown"`
}

func (h *Handler) Generate(c *fiber.Ctx) error {
	var req generateReq
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	g, err := h.generator.Generate(c.UserContext(), req.ResumeMarkdown)
	if err != nil {
		// the backend's own failure status is passed through
		var se *backend.StatusError
		if errors.As(err, &se) && se.StatusCode != fiber.StatusNotFound {
			detail := se.Body
			if strings.TrimSpace(detail) == "" {
				detail = generationFailedFallback
			}
			return problem(c, se.StatusCode, ProblemTypeBadGateway, statusTitle(se.StatusCode), detail)
		}
		return err
	}
	return c.JSON(fiber.Map{"id": g.ID, "schema": schema.Canonical(g.Schema)})
}

func (h *Handler) Sample(c *fiber.Ctx) error {
	return c.JSON(model.SampleDocument())
}

// documentBody decodes and validates a backend-convention document.
func documentBody(c *fiber.Ctx) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(c.Body(), &doc); err != nil || doc == nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "request body must be a JSON object")
	}
	if err := model.ValidateBackendDocument(doc); err != nil {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return doc, nil
}

func (h *Handler) CreatePortfolio(c *fiber.Ctx) error {
	doc, err := documentBody(c)
	if err != nil {
		return err
	}
	id, err := h.repo.CreateFor(c.UserContext(), c.Query("user_id"), doc)
	if err != nil {
		return err
	}
	h.log.Info("portfolio created", zap.String("portfolio_id", id))
	return c.JSON(fiber.Map{"message": "Portfolio saved successfully", "id": id})
}

func (h *Handler) GetPortfolio(c *fiber.Ctx) error {
	doc, err := h.repo.Fetch(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

func (h *Handler) UpdatePortfolio(c *fiber.Ctx) error {
	doc, err := documentBody(c)
	if err != nil {
		return err
	}
	if err := h.repo.Save(c.UserContext(), c.Params("id"), doc); err != nil {
		return err
	}
	return c.JSON(doc)
}
