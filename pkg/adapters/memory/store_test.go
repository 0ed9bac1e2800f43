package memory_test

import (
	"testing"

	"github.com/aretw0/mbtassist/pkg/adapters/memory"
	"github.com/aretw0/mbtassist/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunProjectStoreContract(t, store)
}
