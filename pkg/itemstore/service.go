package itemstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"

	"github.com/hearthbooks/hearth/pkg/errcodes"
	"github.com/hearthbooks/hearth/pkg/models"
)

// Service persists library items and libraries as JSON documents keyed by ID,
// with the library and folder IDs lifted into columns for listing.
type Service struct {
	db *bun.DB
}

func New(db *bun.DB) *Service {
	return &Service{db: db}
}

type itemRecord struct {
	bun.BaseModel `bun:"table:library_items"`

	ID        string    `bun:"id,pk"`
	LibraryID string    `bun:"library_id,notnull"`
	FolderID  string    `bun:"folder_id,notnull"`
	Data      []byte    `bun:"data,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

type libraryRecord struct {
	bun.BaseModel `bun:"table:libraries"`

	ID        string    `bun:"id,pk"`
	Data      []byte    `bun:"data,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Init creates the tables and indexes. Safe to call on every startup.
func (s *Service) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*itemRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return errors.WithStack(err)
	}
	if _, err := s.db.NewCreateTable().Model((*libraryRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return errors.WithStack(err)
	}
	if _, err := s.db.NewCreateIndex().Model((*itemRecord)(nil)).Index("idx_library_items_library_id").Column("library_id").IfNotExists().Exec(ctx); err != nil {
		return errors.WithStack(err)
	}
	if _, err := s.db.NewCreateIndex().Model((*itemRecord)(nil)).Index("idx_library_items_folder_id").Column("folder_id").IfNotExists().Exec(ctx); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (s *Service) InsertItem(ctx context.Context, item *models.LibraryItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	rec := &itemRecord{
		ID:        item.ID,
		LibraryID: item.LibraryID,
		FolderID:  item.FolderID,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.NewInsert().Model(rec).Exec(ctx)
	return errors.WithStack(err)
}

func (s *Service) UpdateItem(ctx context.Context, item *models.LibraryItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return errors.WithStack(err)
	}

	res, err := s.db.NewUpdate().
		Model((*itemRecord)(nil)).
		Set("library_id = ?", item.LibraryID).
		Set("folder_id = ?", item.FolderID).
		Set("data = ?", data).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", item.ID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.WithStack(errcodes.NotFound("LibraryItem"))
	}
	return nil
}

func (s *Service) RemoveItem(ctx context.Context, id string) error {
	_, err := s.db.NewDelete().
		Model((*itemRecord)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

func (s *Service) RetrieveItem(ctx context.Context, id string) (*models.LibraryItem, error) {
	rec := &itemRecord{}
	err := s.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(errcodes.NotFound("LibraryItem"))
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	return decodeItem(rec.Data)
}

func (s *Service) ListItemsByLibrary(ctx context.Context, libraryID string) ([]*models.LibraryItem, error) {
	var recs []itemRecord
	err := s.db.NewSelect().
		Model(&recs).
		Where("library_id = ?", libraryID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return decodeItems(recs)
}

func (s *Service) ListItemsByFolder(ctx context.Context, folderID string) ([]*models.LibraryItem, error) {
	var recs []itemRecord
	err := s.db.NewSelect().
		Model(&recs).
		Where("folder_id = ?", folderID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return decodeItems(recs)
}

func decodeItem(data []byte) (*models.LibraryItem, error) {
	item := &models.LibraryItem{}
	if err := json.Unmarshal(data, item); err != nil {
		return nil, errors.WithStack(err)
	}
	return item, nil
}

func decodeItems(recs []itemRecord) ([]*models.LibraryItem, error) {
	items := make([]*models.LibraryItem, 0, len(recs))
	for _, rec := range recs {
		item, err := decodeItem(rec.Data)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// SaveLibrary inserts or replaces a library document.
func (s *Service) SaveLibrary(ctx context.Context, library *models.Library) error {
	data, err := json.Marshal(library)
	if err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	rec := &libraryRecord{
		ID:        library.ID,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.NewInsert().
		Model(rec).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return errors.WithStack(err)
}

func (s *Service) RetrieveLibrary(ctx context.Context, id string) (*models.Library, error) {
	rec := &libraryRecord{}
	err := s.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(errcodes.NotFound("Library"))
	} else if err != nil {
		return nil, errors.WithStack(err)
	}

	library := &models.Library{}
	if err := json.Unmarshal(rec.Data, library); err != nil {
		return nil, errors.WithStack(err)
	}
	return library, nil
}

func (s *Service) ListLibraries(ctx context.Context) ([]*models.Library, error) {
	var recs []libraryRecord
	err := s.db.NewSelect().Model(&recs).Order("created_at ASC").Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	libraries := make([]*models.Library, 0, len(recs))
	for _, rec := range recs {
		library := &models.Library{}
		if err := json.Unmarshal(rec.Data, library); err != nil {
			return nil, errors.WithStack(err)
		}
		libraries = append(libraries, library)
	}
	return libraries, nil
}

// RemoveLibrary deletes a library and all of its items.
func (s *Service) RemoveLibrary(ctx context.Context, id string) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*itemRecord)(nil)).Where("library_id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		if _, err := tx.NewDelete().Model((*libraryRecord)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	return err
}
