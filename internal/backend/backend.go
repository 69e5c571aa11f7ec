// Package backend holds one thin service per backend resource. Services
// build the resource URL, delegate to the api client and decode the reply;
// nothing is cached and errors come back as the client returned them.
package backend

import (
	"context"
	"net/url"

	"backoffice.app/internal/apiclient"
)

// Caller performs backend calls; *apiclient.Client implements it.
type Caller interface {
	JSON(ctx context.Context, req apiclient.Request, dst any) error
}

// Services groups every resource service over one caller.
type Services struct {
	Clients   *Clients
	Credits   *Credits
	Tickets   *Tickets
	AuditLogs *AuditLogs
	Documents *Documents
	Users     *Users
}

// New wires all services to api.
func New(api Caller) *Services {
	return &Services{
		Clients:   &Clients{api: api},
		Credits:   &Credits{api: api},
		Tickets:   &Tickets{api: api},
		AuditLogs: &AuditLogs{api: api},
		Documents: &Documents{api: api},
		Users:     &Users{api: api},
	}
}

func idPath(collection, id string, rest ...string) string {
	p := "/" + collection + "/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}
