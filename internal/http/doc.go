// Package http exposes the practice over a local JSON API.
//
// The router exposes the following endpoints:
//   - GET /appointments?scope=active|archived|all&q=..., POST /appointments,
//     GET|PUT|DELETE /appointments/{id}: appointment bodies use the same
//     camelCase document as the JSON export, plus an "archived" flag.
//   - GET /days/{YYYY-MM-DD}: the active appointments of a date with sex
//     counts, the assigned doctor and staff.
//   - POST /archive {"cutoff"?}, POST /archive/restore,
//     POST /archive/{id}/restore, DELETE /archive/{id}.
//   - GET /calendar?month=YYYY-MM: the projected month grid.
//   - GET|POST /doctors, DELETE /doctors/{id}, GET|POST /workers,
//     DELETE /workers/{name}.
//   - PUT|DELETE /assignments/{date}/doctor, GET|POST /assignments/{date}/staff,
//     DELETE /assignments/{date}/staff/{name}.
//   - GET /export/json, GET /export/csv?scope=..., POST /import.
//   - POST /backup {"force"?}, POST /restore, GET /backup/status,
//     GET /backup/history?limit=N.
//   - GET /healthz.
//
// Errors are reported as {"error_code","message","errors"}: 400 for malformed
// input, 404 for unknown records, 409 when an empty backup is refused, 422 for
// field validation, 502 when the backup gateway fails.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
