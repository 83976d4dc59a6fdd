// Package session holds per-user editing state between invocations: the
// selected job and convention, and unsaved week drafts.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/storage"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

// Origin tells where an opened week came from.
type Origin int

const (
	OriginBlank Origin = iota
	OriginStore
	OriginDraft
)

func (o Origin) String() string {
	switch o {
	case OriginStore:
		return "saved"
	case OriginDraft:
		return "unsaved draft"
	}
	return "new"
}

// Loader loads persisted week records.
type Loader interface {
	Load(ctx context.Context, id model.WeekIdentity) (*model.WeekRecord, bool, error)
}

// Drafts maps week identities to unsaved records, one JSON file each under
// <base>/drafts/<job>/<convention>/<start>.json.
type Drafts struct {
	dir string
}

// NewDrafts returns the draft set rooted at base.
func NewDrafts(base string) *Drafts {
	return &Drafts{dir: filepath.Join(base, "drafts")}
}

func (d *Drafts) jobDir(job string) string {
	// Dots are escaped too so "." and ".." stay inside the drafts dir.
	return filepath.Join(d.dir, strings.ReplaceAll(url.PathEscape(job), ".", "%2E"))
}

func (d *Drafts) path(id model.WeekIdentity) string {
	return filepath.Join(d.jobDir(id.Job), id.Convention.Code(), id.StartString()+".json")
}

// Get returns the draft held for id.
func (d *Drafts) Get(id model.WeekIdentity) (*model.WeekRecord, bool, error) {
	var rec model.WeekRecord
	found, err := storage.ReadJSON(d.path(id), &rec)
	if err != nil || !found {
		return nil, false, err
	}
	if rec.Identity.Key() != id.Key() {
		return nil, false, fmt.Errorf("draft %s holds week %s", d.path(id), rec.Identity)
	}
	return &rec, true, nil
}

// Put stores rec as the draft for its identity.
func (d *Drafts) Put(rec *model.WeekRecord) error {
	return storage.WriteJSON(d.path(rec.Identity), rec)
}

// Drop forgets the draft for id, if any.
func (d *Drafts) Drop(id model.WeekIdentity) error {
	if err := os.Remove(d.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing draft: %w", err)
	}
	return nil
}

// EvictJob forgets every draft of job.
func (d *Drafts) EvictJob(job string) error {
	if err := os.RemoveAll(d.jobDir(job)); err != nil {
		return fmt.Errorf("removing drafts of %q: %w", job, err)
	}
	return nil
}

// Open returns the record to edit for job's week: the held draft, else the
// stored record, else a blank week. Nothing is written until Put.
func (d *Drafts) Open(ctx context.Context, store Loader, week timecalc.Week, job string) (*model.WeekRecord, Origin, error) {
	id := week.Identity(job)
	if rec, ok, err := d.Get(id); err != nil {
		return nil, OriginBlank, err
	} else if ok {
		return rec, OriginDraft, nil
	}

	rec, ok, err := store.Load(ctx, id)
	if err != nil {
		return nil, OriginBlank, err
	}
	if ok {
		return rec, OriginStore, nil
	}
	return week.Blank(job), OriginBlank, nil
}

// List returns the identities of every held draft, sorted by key.
func (d *Drafts) List() ([]model.WeekIdentity, error) {
	var ids []model.WeekIdentity
	err := filepath.WalkDir(d.dir, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if e.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		var rec model.WeekRecord
		found, err := storage.ReadJSON(path, &rec)
		if err != nil {
			return err
		}
		if found {
			ids = append(ids, rec.Identity)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Key() < ids[j].Key() })
	return ids, nil
}
