// Package cli implements the interactive vault console: a small REPL over
// the engine for setup, unlock, object management, shares, and maintenance.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vantavault/vantavault/internal/blob"
	"github.com/vantavault/vantavault/internal/config"
	"github.com/vantavault/vantavault/internal/logging"
	"github.com/vantavault/vantavault/internal/repositories/repomanager"
	"github.com/vantavault/vantavault/internal/services"
	"github.com/vantavault/vantavault/internal/webauthn"
)

// localClient tags console operations in the audit log.
var localClient = services.ClientInfo{Addr: "local", Agent: "vaultctl"}

type App struct {
	config *config.Config
	db     *sql.DB
	engine *services.Engine
	token  string
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	db, manager, err := repomanager.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := blob.NewFSStore(cfg.StorageDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	engine, err := services.NewEngine(db, manager, store, webauthn.Disabled{}, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config: cfg,
		db:     db,
		engine: engine,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) Close() {
	a.engine.LockAll()
	_ = a.db.Close()
}

func (a *App) isUnlocked() bool {
	return a.token != ""
}

func (a *App) status() string {
	if a.isUnlocked() {
		return "unlocked"
	}
	return "locked"
}

// Setup runs first-time initialization: real PIN plus a decoy PIN,
// generated when the user leaves it blank.
func (a *App) Setup(ctx context.Context) error {
	initialized, err := a.engine.Auth.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		fmt.Fprintln(a.out, "Vault is already set up.")
		return nil
	}

	realPIN, err := GetPIN(a.out, "Choose a PIN")
	if err != nil {
		return err
	}
	decoyPIN, err := GetPIN(a.out, "Choose a decoy PIN (empty to generate one)")
	if err != nil {
		return err
	}

	effectiveDecoy, err := a.engine.Setup(ctx, realPIN, decoyPIN, localClient)
	if err != nil {
		return err
	}
	if decoyPIN == "" {
		fmt.Fprintf(a.out, "Generated decoy PIN: %s (write it down, it is not shown again)\n", effectiveDecoy)
	}
	fmt.Fprintln(a.out, "Vault initialized.")
	return nil
}

// Unlock prompts for a PIN and opens a session. Which vault the session is
// scoped to is not reported.
func (a *App) Unlock(ctx context.Context) error {
	pin, err := GetPIN(a.out, "PIN")
	if err != nil {
		return err
	}

	token, err := a.engine.Unlock(ctx, pin, localClient)
	if err != nil {
		return err
	}
	a.token = token
	fmt.Fprintln(a.out, "Unlocked.")
	return nil
}

// Lock ends the current session.
func (a *App) Lock(ctx context.Context) error {
	a.engine.Lock(a.token)
	a.token = ""
	fmt.Fprintln(a.out, "Locked.")
	return nil
}

// List prints the default folder's contents.
func (a *App) List(ctx context.Context) error {
	objects, err := a.engine.ListObjects(ctx, a.token, "", true, 0)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		fmt.Fprintln(a.out, "(empty)")
		return nil
	}
	for _, o := range objects {
		fmt.Fprintf(a.out, "%s  %-30s %8d bytes  %s\n", o.ID, o.DisplayName, o.ByteSize, o.MimeType)
	}
	return nil
}

// StoreFile reads a local file and stores it encrypted.
func (a *App) StoreFile(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "File to store", a.out)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	obj, err := a.engine.StoreObject(ctx, a.token, data, filepath.Base(path), "")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Stored %s as %s\n", obj.DisplayName, obj.ID)
	return nil
}

// FetchFile decrypts an object into a local file.
func (a *App) FetchFile(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Object id", a.out)
	if err != nil {
		return err
	}
	dest, err := GetSimpleText(a.reader, "Write to", a.out)
	if err != nil {
		return err
	}

	payload, obj, err := a.engine.FetchObject(ctx, a.token, id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, payload, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %s (%d bytes)\n", obj.DisplayName, len(payload))
	return nil
}

// Delete soft-deletes an object (or destroys it, in a decoy session).
func (a *App) Delete(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Object id", a.out)
	if err != nil {
		return err
	}
	if err := a.engine.SoftDeleteObject(ctx, a.token, id, "console delete"); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// Restore brings an object back from the recycle bin.
func (a *App) Restore(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Object id", a.out)
	if err != nil {
		return err
	}
	if err := a.engine.RestoreObject(ctx, a.token, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Restored.")
	return nil
}

// Bin lists the recycle bin.
func (a *App) Bin(ctx context.Context) error {
	entries, err := a.engine.RecycleBin(ctx, a.token)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "(empty)")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "%s  deleted %s  purges %s\n",
			e.ObjectID, e.DeletedAt.Format(time.RFC3339), e.PurgeAfter.Format(time.RFC3339))
	}
	return nil
}

// Share creates a share link for an object.
func (a *App) Share(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Object id", a.out)
	if err != nil {
		return err
	}
	hoursText, err := GetSimpleText(a.reader, "Expiry in hours (empty for default)", a.out)
	if err != nil {
		return err
	}
	var expiry time.Duration
	if hoursText != "" {
		hours, err := strconv.Atoi(hoursText)
		if err != nil {
			return fmt.Errorf("invalid hours: %w", err)
		}
		expiry = time.Duration(hours) * time.Hour
	}
	viewsText, err := GetSimpleText(a.reader, "Max views", a.out)
	if err != nil {
		return err
	}
	maxViews, err := strconv.Atoi(viewsText)
	if err != nil {
		return fmt.Errorf("invalid view count: %w", err)
	}
	password, err := GetPIN(a.out, "Share password (empty for none)")
	if err != nil {
		return err
	}

	share, err := a.engine.CreateShare(ctx, a.token, id, expiry, maxViews, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Token: %s\nExpires: %s\n", share.Token, share.ExpiresAt.Format(time.RFC3339))
	return nil
}

// Stats prints the unlocked vault's summary.
func (a *App) Stats(ctx context.Context) error {
	stats, err := a.engine.Stats(ctx, a.token)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Files:   %d\nBytes:   %d\nFolders: %d\n",
		stats.FileCount, stats.TotalBytes, stats.FolderCount)
	return nil
}

// Audit prints recent security events.
func (a *App) Audit(ctx context.Context) error {
	events, err := a.engine.RecentEvents(ctx, a.token, 20)
	if err != nil {
		return err
	}
	for _, e := range events {
		status := "ok"
		if !e.Success {
			status = "FAIL"
		}
		fmt.Fprintf(a.out, "%s  %-16s %-4s %s\n",
			e.Timestamp.Format(time.RFC3339), e.Kind, status, e.ClientAddr)
	}
	return nil
}

// Sweep runs the maintenance pass on demand.
func (a *App) Sweep(ctx context.Context) error {
	purged, shares, sessions := a.engine.Sweep(ctx)
	fmt.Fprintf(a.out, "Purged %d objects, %d share links, %d idle sessions\n",
		purged, shares, sessions)
	return nil
}
