package ports

import "github.com/aretw0/axon/pkg/domain"

// SchematicSource exposes a read-only circuit structure.
type SchematicSource interface {
	Name() string
	Schematic() *domain.Schematic
}
