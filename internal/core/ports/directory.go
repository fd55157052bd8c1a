package ports

import (
	"context"

	"github.com/handyapp/gateway/internal/core/domain/directory"
)

// DirectoryService registers and discovers service providers.
type DirectoryService interface {
	// Register validates the request, then writes the type index and the
	// detail blob as two independent remote calls. The result is non-nil
	// whenever validation passed, even if the error is a partial write.
	Register(ctx context.Context, req *directory.RegisterServiceRequest) (*directory.RegistrationResult, error)
	// Lookup issues one remote provider query and shapes its envelope.
	Lookup(ctx context.Context, req *directory.LookupRequest) (*directory.LookupResult, error)
}
