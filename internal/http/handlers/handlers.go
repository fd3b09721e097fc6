package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/diagnosis/wedding-rsvp/internal/http/middleware"
	"github.com/diagnosis/wedding-rsvp/internal/http/response"
	"github.com/diagnosis/wedding-rsvp/internal/service"
	"github.com/diagnosis/wedding-rsvp/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

type Options struct {
	// Message is returned by GET /.
	Message string
	// SubmitLimiter, when set, wraps POST /rsvp only.
	SubmitLimiter func(http.Handler) http.Handler
}

type Handlers struct {
	rsvpService service.RSVPService
	authService service.AuthService
	tokens      *auth.TokenService
	validate    *validator.Validate
	opts        Options
}

func New(rsvpService service.RSVPService, authService service.AuthService, tokens *auth.TokenService, opts Options) *Handlers {
	return &Handlers{
		rsvpService: rsvpService,
		authService: authService,
		tokens:      tokens,
		validate:    newValidator(),
		opts:        opts,
	}
}

// Routes returns the public and admin route groups, to be mounted under the API prefix.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Root)
	if h.opts.SubmitLimiter != nil {
		r.With(h.opts.SubmitLimiter).Post("/rsvp", h.CreateRSVP)
	} else {
		r.Post("/rsvp", h.CreateRSVP)
	}

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", h.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(h.tokens))
			r.Get("/rsvps", h.ListRSVPs)
			r.Get("/stats", h.Stats)
			r.Get("/export-csv", h.ExportCSV)
		})
	})

	return r
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate parses a JSON body into dst and checks its shape.
// The returned error text is safe to show to the caller.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var syntaxErr *json.SyntaxError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		case errors.As(err, &typeErr):
			return fmt.Errorf("field %q must be %s", typeErr.Field, typeErr.Type)
		case errors.As(err, &syntaxErr):
			return fmt.Errorf("malformed JSON at offset %d", syntaxErr.Offset)
		case errors.As(err, &maxErr):
			return errors.New("request body too large")
		default:
			return errors.New("invalid JSON format")
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON format")
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return fmt.Errorf("missing or null fields: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	response.JSON(w, statusCode, data)
}
