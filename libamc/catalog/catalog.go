// Package catalog persists reduced equations so that re-running an input
// file skips terms that were already reduced with the same options.
package catalog

import (
	"encoding/binary"
	"runtime"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
	"github.com/amc-systems/goamc/libamc/algebra"
)

/***

Catalog database format:

	gCatalogStateKey => catalogState

	kEquationPrefix, optsFingerprint (byte), equation text
		=> reduced equation text

The fingerprint byte keys the reduction options that shape the output
(convention, symbol collection), so the same equation reduced under two
conventions gets two entries.

***/

var gCatalogStateKey = []byte{0x00, 0x00, 0x01}

const kEquationPrefix = byte(0x02)

const (
	kMajorVers = 2024
	kMinorVers = 1
)

type catalogState struct {
	MajorVers    uint64
	MinorVers    uint64
	NumEquations uint64
}

func (st *catalogState) Marshal() []byte {
	buf := make([]byte, 0, 3*binary.MaxVarintLen64)
	buf = binary.AppendUvarint(buf, st.MajorVers)
	buf = binary.AppendUvarint(buf, st.MinorVers)
	buf = binary.AppendUvarint(buf, st.NumEquations)
	return buf
}

func (st *catalogState) Unmarshal(buf []byte) error {
	for _, field := range []*uint64{&st.MajorVers, &st.MinorVers, &st.NumEquations} {
		v, n := binary.Uvarint(buf)
		if n <= 0 {
			return errors.Wrap(goamc.ErrBadCatalogParam, "corrupt catalog state")
		}
		*field = v
		buf = buf[n:]
	}
	return nil
}

// Opts configures a catalog.
type Opts struct {
	// DbPathName is the db directory. Empty selects a memory-only catalog.
	DbPathName string

	ReadOnly bool
}

// Catalog is a db wrapper for a reduced-equation store with a read-through
// in-memory cache.
type Catalog struct {
	mu         sync.Mutex
	db         *badger.DB
	readOnly   bool
	state      catalogState
	stateDirty bool
	cache      *redblacktree.Tree
}

func OpenCatalog(opts Opts) (*Catalog, error) {
	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(goamc.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	cat := &Catalog{
		readOnly: opts.ReadOnly,
		cache:    redblacktree.NewWith(utils.StringComparator),
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state.MajorVers = kMajorVers
		cat.state.MinorVers = kMinorVers
	}
	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Wrap(goamc.ErrBadCatalogParam, "catalog version is incompatible")
	}
	if err != nil {
		cat.Close()
		return nil, err
	}

	return cat, nil
}

func (cat *Catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cat.state.Unmarshal(val)
		})
	})
}

func (cat *Catalog) flushState() error {
	if !cat.stateDirty || cat.readOnly {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gCatalogStateKey, cat.state.Marshal())
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

func (cat *Catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return nil
	}
	err := cat.flushState()
	if dbErr := cat.db.Close(); err == nil {
		err = dbErr
	}
	cat.db = nil
	return err
}

// NumEquations is the number of reduced equations stored.
func (cat *Catalog) NumEquations() int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int64(cat.state.NumEquations)
}

// optsFingerprint encodes the option fields that change the reduced form.
func optsFingerprint(opts goamc.ReduceOpts) byte {
	fp := byte(opts.Convention) & 0x0F
	if opts.CollectNineJs {
		fp |= 0x10
	}
	if opts.CollectTwelveJs {
		fp |= 0x20
	}
	return fp
}

func formEquationKey(key []byte, eq *algebra.Equation, opts goamc.ReduceOpts) []byte {
	key = append(key, kEquationPrefix, optsFingerprint(opts))
	key = append(key, eq.String()...)
	return key
}

// Put stores the reduced form of eq under the given options.
func (cat *Catalog) Put(eq *algebra.Equation, reduced *algebra.ReducedEquation, opts goamc.ReduceOpts) error {
	if cat.readOnly {
		return errors.Wrap(goamc.ErrBadCatalogParam, "catalog is read-only")
	}

	key := formEquationKey(nil, eq, opts)
	val := reduced.String()

	cat.mu.Lock()
	defer cat.mu.Unlock()

	err := cat.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		cat.state.NumEquations++
		cat.stateDirty = true
		return txn.Set(key, []byte(val))
	})
	if err != nil {
		return err
	}

	cat.cache.Put(string(key), val)
	return nil
}

// Get looks up the reduced form of eq under the given options. The second
// return is false on a miss.
func (cat *Catalog) Get(eq *algebra.Equation, opts goamc.ReduceOpts) (string, bool, error) {
	key := formEquationKey(nil, eq, opts)

	cat.mu.Lock()
	defer cat.mu.Unlock()

	if hit, found := cat.cache.Get(string(key)); found {
		return hit.(string), true, nil
	}

	var val string
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			val = string(v)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	cat.cache.Put(string(key), val)
	return val, true, nil
}

// Select calls onHit with every stored (equation, reduced) pair whose key
// matches the options fingerprint, in key order. Enumeration stops early if
// onHit returns false.
func (cat *Catalog) Select(opts goamc.ReduceOpts, onHit func(equation, reduced string) bool) error {
	prefix := []byte{kEquationPrefix, optsFingerprint(opts)}

	return cat.db.View(func(txn *badger.Txn) error {
		itrOpts := badger.DefaultIteratorOptions
		itrOpts.Prefix = prefix
		itr := txn.NewIterator(itrOpts)
		defer itr.Close()

		for itr.Rewind(); itr.Valid(); itr.Next() {
			item := itr.Item()
			eqText := string(item.Key()[len(prefix):])
			stop := false
			err := item.Value(func(v []byte) error {
				stop = !onHit(eqText, string(v))
				return nil
			})
			if err != nil {
				return err
			}
			if stop {
				break
			}
		}
		return nil
	})
}
