package gcpprojects

import (
	"context"
	"fmt"

	resourcemanager "cloud.google.com/go/resourcemanager/apiv3"
	"cloud.google.com/go/resourcemanager/apiv3/resourcemanagerpb"
	"github.com/amit7itz/goset"
	"github.com/fleetsync/gcp-integration-syncer/shared/errors"
	"github.com/fleetsync/gcp-integration-syncer/shared/syncerconfig"
	"github.com/fleetsync/gcp-integration-syncer/shared/syncererrors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// projectIterator is the slice of the Resource Manager search iterator the
// source consumes.
type projectIterator interface {
	Next() (*resourcemanagerpb.Project, error)
}

// Source lists the active GCP projects under the configured scope via the
// Resource Manager v3 search API.
type Source struct {
	client *resourcemanager.ProjectsClient
	query  string
}

func NewSource(ctx context.Context) (*Source, error) {
	logrus.Info("Initializing GCP project source")

	opts := make([]option.ClientOption, 0)
	if quotaProject := viper.GetString(syncerconfig.GCPQuotaProjectKey); quotaProject != "" {
		opts = append(opts, option.WithQuotaProject(quotaProject))
	}

	client, err := resourcemanager.NewProjectsClient(ctx, opts...)
	if err != nil {
		return nil, errors.Errorf("failed to create Resource Manager client: %w", err)
	}

	query := "state:ACTIVE"
	if parent := viper.GetString(syncerconfig.GCPParentScopeKey); parent != "" {
		query = fmt.Sprintf("%s AND parent:%s", query, parent)
	}

	return &Source{client: client, query: query}, nil
}

// ListProjects returns a complete, deduplicated snapshot of the active
// project IDs. The search iterator is fully drained before returning; a
// partial listing would make the engine treat live projects as deleted.
func (s *Source) ListProjects(ctx context.Context) (*goset.Set[string], error) {
	it := s.client.SearchProjects(ctx, &resourcemanagerpb.SearchProjectsRequest{Query: s.query})
	projects, err := drain(it)
	if err != nil {
		return nil, mapGRPCError(err)
	}

	logrus.Debugf("GCP project search returned %d active projects", projects.Len())
	return projects, nil
}

func (s *Source) Close() error {
	return s.client.Close()
}

func drain(it projectIterator) (*goset.Set[string], error) {
	projects := goset.NewSet[string]()
	for {
		project, err := it.Next()
		if err == iterator.Done {
			return projects, nil
		}
		if err != nil {
			return nil, errors.Wrap(err)
		}
		projects.Add(project.GetProjectId())
	}
}

func mapGRPCError(err error) error {
	switch status.Code(errors.Unwrap(err)) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return errors.Errorf("listing GCP projects: %v: %w", err, syncererrors.ErrAuth)
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Internal:
		return errors.Errorf("listing GCP projects: %v: %w", err, syncererrors.ErrUpstreamUnavailable)
	default:
		return errors.Errorf("listing GCP projects: %w", err)
	}
}
