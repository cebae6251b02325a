package engine

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"notion-forms/internal/events"
	"notion-forms/internal/instrument"
	"notion-forms/internal/metadata"
	"notion-forms/internal/store"
)

// SessionCodec issues and verifies the session token handed out with a form.
type SessionCodec interface {
	IssueFormSession(databaseID, userID, workspace string) (string, error)
	ParseFormSession(token string) (*metadata.FormSession, error)
}

type Handler struct {
	backends      BackendFactory
	installations *store.Installations
	submissions   *store.Submissions
	sessions      SessionCodec
	publisher     events.Publisher
}

func NewHandler(backends BackendFactory, inst *store.Installations, subs *store.Submissions, sessions SessionCodec, pub events.Publisher) *Handler {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Handler{
		backends:      backends,
		installations: inst,
		submissions:   subs,
		sessions:      sessions,
		publisher:     pub,
	}
}

// ListDatabases handles GET /api/databases?query=
func (h *Handler) ListDatabases(c *fiber.Ctx) error {
	backend, err := h.backendFor(c, workspaceOf(getUser(c)))
	if err != nil {
		return err
	}

	options, err := ListSelectableDatabases(c.UserContext(), c.Query("query"), backend)
	if err != nil {
		log.Printf("ERROR: list databases: %v", err)
		return respondError(c, SearchError())
	}
	if options == nil {
		options = []metadata.OptionPair{}
	}
	return c.JSON(fiber.Map{"data": options})
}

// GetForm handles GET /api/databases/:id/form
func (h *Handler) GetForm(c *fiber.Ctx) error {
	user := getUser(c)
	backend, err := h.backendFor(c, workspaceOf(user))
	if err != nil {
		return err
	}

	databaseID := c.Params("id")
	ctx := c.UserContext()
	schema, err := backend.RetrieveDatabase(ctx, databaseID)
	if err != nil {
		log.Printf("ERROR: retrieve database %s: %v", databaseID, err)
		return respondError(c, SchemaLoadError())
	}

	fields, err := BuildFormTraced(ctx, schema)
	if err != nil {
		log.Printf("ERROR: build form: %v", err)
		return respondError(c, SchemaLoadError())
	}

	session, err := h.sessions.IssueFormSession(databaseID, userID(user), workspaceOf(user))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"database_id": databaseID,
		"header":      FormHeader(schema),
		"fields":      fields,
		"session":     session,
	}})
}

type submitBody struct {
	Session string              `json:"session"`
	Values  metadata.Submission `json:"values"`
}

// Submit handles POST /api/submissions
func (h *Handler) Submit(c *fiber.Ctx) error {
	var body submitBody
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body"))
	}

	session, err := h.sessions.ParseFormSession(body.Session)
	if err != nil {
		return respondError(c, NewAppError("INVALID_SESSION", 400, "Form session is invalid or expired"))
	}
	user := getUser(c)
	if session.UserID != userID(user) {
		return respondError(c, ForbiddenError("Form session belongs to another user"))
	}

	ctx := c.UserContext()
	if errs := ValidateTraced(ctx, body.Values); len(errs) > 0 {
		instrument.Submissions.WithLabelValues("invalid").Inc()
		return respondError(c, ValidationError(ValidationDetails(errs)))
	}
	if detail := checkTitle(body.Values); detail != nil {
		instrument.Submissions.WithLabelValues("invalid").Inc()
		return respondError(c, ValidationError([]ErrorDetail{*detail}))
	}

	backend, err := h.backendFor(c, session.Workspace)
	if err != nil {
		return err
	}

	created, err := SubmitRecord(ctx, backend, session.DatabaseID, body.Values)
	if err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) {
			instrument.Submissions.WithLabelValues("invalid").Inc()
			return respondError(c, appErr)
		}
		instrument.Submissions.WithLabelValues("failed").Inc()
		log.Printf("ERROR: submit: %v", err)
		return respondError(c, WriteError())
	}
	instrument.Submissions.WithLabelValues("created").Inc()

	// The page exists in Notion at this point; bookkeeping failures are logged only.
	submissionID, err := h.submissions.Record(ctx, session.DatabaseID, created.ID, created.URL, session.UserID)
	if err != nil {
		log.Printf("ERROR: %v", err)
	}
	ev := events.RecordCreated{
		SubmissionID: submissionID,
		DatabaseID:   session.DatabaseID,
		PageID:       created.ID,
		URL:          created.URL,
		UserID:       session.UserID,
		Workspace:    session.Workspace,
		TraceID:      instrument.GetTraceID(ctx),
		OccurredAt:   time.Now().UTC(),
	}
	if err := h.publisher.PublishRecordCreated(ctx, ev); err != nil {
		log.Printf("ERROR: %v", err)
	}

	return c.Status(201).JSON(fiber.Map{"data": fiber.Map{
		"id":            created.ID,
		"url":           created.URL,
		"submission_id": submissionID,
	}})
}

// ListSubmissions handles GET /api/submissions
func (h *Handler) ListSubmissions(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	recs, err := h.submissions.ListRecent(c.UserContext(), userID(getUser(c)), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": recs})
}

func (h *Handler) backendFor(c *fiber.Ctx, workspace string) (Backend, error) {
	token, err := h.installations.ResolveToken(c.UserContext(), workspace)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NewAppError("NOT_INSTALLED", 403, "Notion is not connected for this workspace")
	}
	if err != nil {
		return nil, err
	}
	return h.backends(token), nil
}

func getUser(c *fiber.Ctx) *metadata.UserContext {
	user, _ := c.Locals("user").(*metadata.UserContext)
	return user
}

func userID(u *metadata.UserContext) string {
	if u == nil {
		return ""
	}
	return u.ID
}

func workspaceOf(u *metadata.UserContext) string {
	if u == nil {
		return ""
	}
	return u.Workspace
}

func respondError(c *fiber.Ctx, appErr *AppError) error {
	return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
}
