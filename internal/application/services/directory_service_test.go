package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	impl "github.com/handyapp/gateway/internal/application/services"
	"github.com/handyapp/gateway/internal/core/domain/apperr"
	"github.com/handyapp/gateway/internal/core/domain/directory"
	"github.com/handyapp/gateway/test/mocks"
)

type putCall struct{ key, value string }

func recordingStore(fail func(key string) error) (*mocks.RemoteStoreMock, func() []putCall) {
	var mu sync.Mutex
	var calls []putCall
	m := &mocks.RemoteStoreMock{
		PutServiceFn: func(ctx context.Context, key, value string) error {
			mu.Lock()
			calls = append(calls, putCall{key, value})
			mu.Unlock()
			if fail != nil {
				return fail(key)
			}
			return nil
		},
	}
	return m, func() []putCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]putCall(nil), calls...)
	}
}

func bobRequest() *directory.RegisterServiceRequest {
	return &directory.RegisterServiceRequest{Name: "Bob", Type: "Gardening", Location: "X", Cost: "60", Description: "d"}
}

func TestRegister_WritesIndexThenDetail(t *testing.T) {
	remote, calls := recordingStore(nil)
	svc := impl.NewDirectoryService(remote, nil)

	res, err := svc.Register(context.Background(), bobRequest())
	require.NoError(t, err)
	require.NotEmpty(t, res.ServiceID)
	_, err = uuid.Parse(res.ServiceID)
	require.NoError(t, err)
	assert.True(t, res.Complete())

	got := calls()
	require.Len(t, got, 2)
	assert.Equal(t, "Gardening", got[0].key)
	assert.Equal(t, res.ServiceID, got[0].value)
	assert.Equal(t, res.ServiceID, got[1].key)

	rec, err := directory.UnmarshalRecord(got[1].value)
	require.NoError(t, err)
	assert.Equal(t, &directory.ServiceRecord{
		ID: res.ServiceID, Name: "Bob", Type: "Gardening", Location: "X", Cost: "60", Description: "d",
		Availability: directory.Unavailable,
	}, rec)
}

func TestRegister_IDsAreUnique(t *testing.T) {
	remote, _ := recordingStore(nil)
	svc := impl.NewDirectoryService(remote, nil)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		res, err := svc.Register(context.Background(), bobRequest())
		require.NoError(t, err)
		require.False(t, seen[res.ServiceID])
		seen[res.ServiceID] = true
	}
}

func TestRegister_MissingFieldMakesNoRemoteCalls(t *testing.T) {
	remote, _ := recordingStore(nil)
	svc := impl.NewDirectoryService(remote, nil)

	req := bobRequest()
	req.Cost = ""
	res, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "cost")
	assert.Equal(t, int32(0), remote.PutServiceCalls.Load())
}

func TestRegister_DetailFailureIsPartialWrite(t *testing.T) {
	remote, calls := recordingStore(func(key string) error {
		if key == "Gardening" {
			return nil
		}
		return errors.New("timeout")
	})
	svc := impl.NewDirectoryService(remote, nil)

	res, err := svc.Register(context.Background(), bobRequest())
	require.Error(t, err)
	assert.True(t, apperr.IsPartialWrite(err))
	require.NotNil(t, res)
	assert.NotEmpty(t, res.ServiceID)
	assert.True(t, res.TypeIndex.OK)
	assert.False(t, res.Detail.OK)
	assert.Equal(t, "timeout", res.Detail.Error)
	// No rollback of the index write.
	assert.Len(t, calls(), 2)
}

func TestRegister_BothWritesAttemptedWhenIndexFails(t *testing.T) {
	remote, calls := recordingStore(func(key string) error {
		if key == "Gardening" {
			return errors.New("refused")
		}
		return nil
	})
	svc := impl.NewDirectoryService(remote, nil)

	res, err := svc.Register(context.Background(), bobRequest())
	assert.True(t, apperr.IsPartialWrite(err))
	assert.False(t, res.TypeIndex.OK)
	assert.True(t, res.Detail.OK)
	assert.Len(t, calls(), 2)
}

func TestLookup_Envelopes(t *testing.T) {
	tests := []struct {
		name       string
		payload    []byte
		found      bool
		wantStatus int
		wantError  string
		wantData   bool
	}{
		{"found", []byte(`{"status":0,"name":"Bob","location":"X"}`), true, directory.StatusFound, "", true},
		{"not found status", []byte(`{"status":1}`), true, directory.StatusNoProvider, directory.MsgNotFound, true},
		{"location mismatch", []byte(`{"status":3,"id":"x"}`), true, directory.StatusNoProvider, directory.MsgNotFound, true},
		{"no payload", nil, false, directory.StatusNoProvider, directory.MsgNoRemoteData, false},
		{"no status field", []byte(`{"name":"Bob"}`), true, directory.StatusNoProvider, directory.MsgNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &mocks.RemoteStoreMock{
				GetServiceProviderFn: func(ctx context.Context, serviceType, location string) ([]byte, bool, error) {
					assert.Equal(t, "Gardening", serviceType)
					assert.Equal(t, "X", location)
					return tt.payload, tt.found, nil
				},
			}
			svc := impl.NewDirectoryService(remote, nil)

			res, err := svc.Lookup(context.Background(), &directory.LookupRequest{Type: "Gardening", Location: "X"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantError, res.Error)
			assert.Equal(t, tt.wantData, res.Data != nil)
			if tt.wantStatus == directory.StatusFound {
				assert.Equal(t, "Bob", res.Data["name"])
			}
			assert.Equal(t, int32(1), remote.GetServiceProviderCalls.Load())
		})
	}
}

func TestLookup_IsNeverCached(t *testing.T) {
	remote := &mocks.RemoteStoreMock{
		GetServiceProviderFn: func(ctx context.Context, serviceType, location string) ([]byte, bool, error) {
			return []byte(`{"status":0}`), true, nil
		},
	}
	svc := impl.NewDirectoryService(remote, nil)
	for i := 0; i < 3; i++ {
		_, err := svc.Lookup(context.Background(), &directory.LookupRequest{Type: "Gardening"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), remote.GetServiceProviderCalls.Load())
}

func TestLookup_RemoteFailure(t *testing.T) {
	remote := &mocks.RemoteStoreMock{
		GetServiceProviderFn: func(ctx context.Context, serviceType, location string) ([]byte, bool, error) {
			return nil, false, errors.New("down")
		},
	}
	svc := impl.NewDirectoryService(remote, nil)

	_, err := svc.Lookup(context.Background(), &directory.LookupRequest{Type: "Gardening"})
	assert.True(t, apperr.IsRemoteUnavailable(err))

	_, err = svc.Lookup(context.Background(), &directory.LookupRequest{})
	assert.True(t, apperr.IsValidation(err))
}
