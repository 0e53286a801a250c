package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PathEntry — одно звено закешированной цепочки предков: id и имя папки.
type PathEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PathArray хранится в колонке jsonb и описывает цепочку предков
// от корня до непосредственного родителя (сама папка в нее не входит).
type PathArray []PathEntry

func (p PathArray) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

func (p *PathArray) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = PathArray{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into PathArray", src)
	}
}

type Folder struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ParentID  *int64    `json:"parent_id,omitempty" db:"parent_id"`
	Path      string    `json:"path" db:"path"`
	PathArray PathArray `json:"path_array" db:"path_array"`
	Level     int       `json:"level" db:"level"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FolderContent — папка вместе с её непосредственным содержимым.
type FolderContent struct {
	Folders []Folder `json:"folders"`
	Files   []File   `json:"files"`
	Total   int      `json:"total"`
}

// BreadcrumbItem — элемент навигационной цепочки. Для синтетического
// корня ID равен nil.
type BreadcrumbItem struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}
