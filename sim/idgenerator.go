package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var (
	idGeneratorOnce sync.Once
	idGeneratorMu   sync.Mutex
	idGenerator     IDGenerator
)

// IDGenerator can generate IDs
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// UseSequentialIDGenerator makes events and objections get IDs 1, 2, 3, ...
// This is the default and keeps repeated runs comparable.
func UseSequentialIDGenerator() {
	setIDGenerator(&sequentialIDGenerator{})
}

// UseGlobalIDGenerator makes IDs globally unique across runs, which is useful
// when several runs record into the same database.
func UseGlobalIDGenerator() {
	setIDGenerator(globalIDGenerator{})
}

func setIDGenerator(g IDGenerator) {
	idGeneratorMu.Lock()
	defer idGeneratorMu.Unlock()

	if idGenerator != nil {
		log.Panic("cannot change id generator type after using it")
	}

	idGenerator = g
}

// GetIDGenerator returns the ID generator used in the current simulation
func GetIDGenerator() IDGenerator {
	idGeneratorOnce.Do(func() {
		idGeneratorMu.Lock()
		defer idGeneratorMu.Unlock()

		if idGenerator == nil {
			idGenerator = &sequentialIDGenerator{}
		}
	})

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}

type globalIDGenerator struct{}

func (globalIDGenerator) Generate() string {
	return xid.New().String()
}
