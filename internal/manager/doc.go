// Package manager owns the lifecycle of one capability session: lazy
// creation with download-progress tracking, reuse or replacement of the live
// instance by config equality, serialized invocations (single-shot or
// streamed) and deterministic release on every exit path. It is structured
// into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: State, DownloadState, Mode, Result, Snapshot.
//   - errors.go: error taxonomy and helpers (IsEmptyInput, IsCreationFailed, ...).
//   - handle.go: Handle (instance + listener cleanup) and acquisition.
//   - progress.go: download progress tracking per creation attempt.
//   - ensure.go: reuse-or-replace state machine.
//   - admission.go: single in-flight invocation per handle.
//   - infer.go: invocation runner (single-shot and streaming).
//   - history.go: capped most-recent-first ledger.
//   - close.go: retirement and session teardown.
//   - ops.go: background preload.
//   - status_report.go: Snapshot/Status reporting.
//
// The Manager is generic over the config type. Any comparable struct works;
// two configs are equivalent when == holds.
package manager
