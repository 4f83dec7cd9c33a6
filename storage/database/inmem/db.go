package inmemdb

import (
	"sync"

	"github.com/trezcool/ecurie/core/training"
)

type (
	DB struct {
		class *classTable
	}

	classTable struct {
		sync.RWMutex
		table map[string]*training.TrainingClass
	}
)

func Open() (*DB, error) {
	db := &DB{
		class: &classTable{table: make(map[string]*training.TrainingClass)},
	}
	return db, nil
}

// Reset drops every stored document.
func (db *DB) Reset() {
	db.class.Lock()
	defer db.class.Unlock()
	db.class.table = make(map[string]*training.TrainingClass)
}
