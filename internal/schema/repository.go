package schema

import (
	"embed"
	"errors"
	"io/fs"
	"os"

	"github.com/baechuer/account-service/internal/domain"
)

//go:embed defaults/*.json
var embedded embed.FS

// Defaults returns the built-in schema documents.
func Defaults() fs.FS {
	sub, err := fs.Sub(embedded, "defaults")
	if err != nil {
		panic(err)
	}
	return sub
}

// Dir returns the schema documents found in dir, or the defaults when dir is empty.
func Dir(dir string) fs.FS {
	if dir == "" {
		return Defaults()
	}
	return os.DirFS(dir)
}

// Repository holds every request schema, loaded once at startup.
type Repository struct {
	schemas map[Kind]*RequestSchema
}

// NewRepository loads <kind>.json for each known kind from fsys.
func NewRepository(fsys fs.FS, check TagChecker) (*Repository, error) {
	r := &Repository{schemas: map[Kind]*RequestSchema{}}
	for _, k := range []Kind{KindLogin, KindRegister, KindAccountSettings} {
		data, err := fs.ReadFile(fsys, string(k)+".json")
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, domain.ErrSchemaNotFound(string(k))
			}
			return nil, err
		}
		s, err := Parse(k, data, check)
		if err != nil {
			return nil, err
		}
		r.schemas[k] = s
	}
	return r, nil
}

// Load returns the schema for kind.
func (r *Repository) Load(kind Kind) (*RequestSchema, error) {
	s, ok := r.schemas[kind]
	if !ok {
		return nil, domain.ErrSchemaNotFound(string(kind))
	}
	return s, nil
}
