// Package identity resolves the acting owner. Authentication happens
// upstream; requests arriving here are trusted.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/grpc/metadata"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
	HeaderUserRole = "X-User-Role"

	MetadataUserID   = "user-id"
	MetadataUserName = "user-name-bin" // binary key so names need not be ASCII

	RoleAdmin = "admin"
)

var ErrMissingIdentity = errors.New("missing user identity")

type Owner struct {
	ID    int64
	Name  string
	Admin bool
}

type ownerKey struct{}

func WithOwner(ctx context.Context, o Owner) context.Context {
	return context.WithValue(ctx, ownerKey{}, o)
}

func FromContext(ctx context.Context) (Owner, bool) {
	o, ok := ctx.Value(ownerKey{}).(Owner)
	return o, ok && o.ID > 0
}

// Provider resolves the owner of an inbound HTTP request.
type Provider interface {
	Resolve(r *http.Request) (Owner, error)
}

// HeaderProvider trusts identity headers set by the fronting auth proxy.
type HeaderProvider struct{}

func (HeaderProvider) Resolve(r *http.Request) (Owner, error) {
	id, err := parseUserID(r.Header.Get(HeaderUserID))
	if err != nil {
		return Owner{}, err
	}
	return Owner{
		ID:    id,
		Name:  r.Header.Get(HeaderUserName),
		Admin: strings.EqualFold(r.Header.Get(HeaderUserRole), RoleAdmin),
	}, nil
}

// FromIncomingMetadata resolves the owner of a gRPC call.
func FromIncomingMetadata(ctx context.Context) (Owner, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return Owner{}, ErrMissingIdentity
	}
	values := md.Get(MetadataUserID)
	if len(values) == 0 {
		return Owner{}, ErrMissingIdentity
	}
	id, err := parseUserID(values[0])
	if err != nil {
		return Owner{}, err
	}
	o := Owner{ID: id}
	if names := md.Get(MetadataUserName); len(names) > 0 {
		o.Name = names[0]
	}
	return o, nil
}

// AppendToOutgoing attaches the owner to an outgoing gRPC context. An empty
// name is not sent.
func AppendToOutgoing(ctx context.Context, o Owner) context.Context {
	kv := []string{MetadataUserID, strconv.FormatInt(o.ID, 10)}
	if o.Name != "" {
		kv = append(kv, MetadataUserName, o.Name)
	}
	return metadata.AppendToOutgoingContext(ctx, kv...)
}

func parseUserID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrMissingIdentity
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid user id %q", ErrMissingIdentity, raw)
	}
	return id, nil
}
