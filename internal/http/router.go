package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/example/clinic-scheduler/internal/clinic"
)

type RouterConfig struct {
	Appointments *AppointmentHandler
	Roster       *RosterHandler
	Calendar     *CalendarHandler
	Transfer     *TransferHandler
	Backup       *BackupHandler
	// Health reports whether local storage is usable.
	Health     func(ctx context.Context) error
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.Appointments != nil {
		h := cfg.Appointments
		mux.HandleFunc("/appointments", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.List(w, r)
			case http.MethodPost:
				h.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/appointments/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/appointments/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithAppointmentID(r.Context(), clinic.ID(id)))
			switch r.Method {
			case http.MethodGet:
				h.Get(w, r)
			case http.MethodPut:
				h.Update(w, r)
			case http.MethodDelete:
				h.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
		mux.HandleFunc("/days/", func(w http.ResponseWriter, r *http.Request) {
			r, ok := withPathDate(w, r, strings.TrimPrefix(r.URL.Path, "/days/"))
			if !ok {
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			h.Day(w, r)
		})
		mux.HandleFunc("/archive", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			h.Archive(w, r)
		})
		mux.HandleFunc("/archive/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/archive/")
			if rest == "restore" {
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				h.RestoreAll(w, r)
				return
			}

			id, action, _ := strings.Cut(rest, "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithAppointmentID(r.Context(), clinic.ID(id)))
			switch action {
			case "":
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				h.DeletePermanently(w, r)
			case "restore":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				h.RestoreOne(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Calendar != nil {
		mux.HandleFunc("/calendar", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Calendar.Month(w, r)
		})
	}

	if cfg.Roster != nil {
		registerRosterRoutes(mux, cfg.Roster)
	}

	if cfg.Transfer != nil {
		h := cfg.Transfer
		mux.HandleFunc("/export/json", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			h.ExportJSON(w, r)
		})
		mux.HandleFunc("/export/csv", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			h.ExportCSV(w, r)
		})
		mux.HandleFunc("/import", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			h.Import(w, r)
		})
	}

	if cfg.Backup != nil {
		h := cfg.Backup
		mux.HandleFunc("/backup", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			h.BackupNow(w, r)
		})
		mux.HandleFunc("/backup/status", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			h.Status(w, r)
		})
		mux.HandleFunc("/backup/history", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			h.History(w, r)
		})
		mux.HandleFunc("/restore", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			h.Restore(w, r)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func registerRosterRoutes(mux *http.ServeMux, h *RosterHandler) {
	mux.HandleFunc("/doctors", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.ListDoctors(w, r)
		case http.MethodPost:
			h.AddDoctor(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})
	mux.HandleFunc("/doctors/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/doctors/")
		if id == "" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, http.MethodDelete)
			return
		}
		h.RemoveDoctor(w, r, id)
	})
	mux.HandleFunc("/workers", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.ListWorkers(w, r)
		case http.MethodPost:
			h.AddWorker(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})
	mux.HandleFunc("/workers/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/workers/")
		if name == "" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, http.MethodDelete)
			return
		}
		h.RemoveWorker(w, r, name)
	})
	mux.HandleFunc("/assignments/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/assignments/")
		value, sub, _ := strings.Cut(rest, "/")
		r, ok := withPathDate(w, r, value)
		if !ok {
			return
		}

		switch {
		case sub == "doctor":
			switch r.Method {
			case http.MethodPut:
				h.AssignDoctor(w, r)
			case http.MethodDelete:
				h.ClearDoctor(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		case sub == "staff":
			switch r.Method {
			case http.MethodGet:
				h.Staff(w, r)
			case http.MethodPost:
				h.AssignWorker(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		case strings.HasPrefix(sub, "staff/") && len(sub) > len("staff/"):
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			h.UnassignWorker(w, r, strings.TrimPrefix(sub, "staff/"))
		default:
			http.NotFound(w, r)
		}
	})
}

// withPathDate parses a YYYY-MM-DD path segment into the request context. It
// writes a 400 response and reports false when the segment is not a date.
func withPathDate(w http.ResponseWriter, r *http.Request, value string) (*http.Request, bool) {
	date, err := clinic.ParseDate(value)
	if err != nil {
		newResponder(LoggerFromContext(r.Context())).writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return r, false
	}
	return r.WithContext(ContextWithDate(r.Context(), date)), true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
