package di

import (
	"context"
	"testing"
	"time"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/config"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/observability"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/serviceinterfaces/mocks"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) (*ServiceContainer, *mocks.MockFeedbackAPI) {
	t.Helper()
	cfg := config.Default()
	cfg.Dashboard.PollInterval = time.Hour
	api := &mocks.MockFeedbackAPI{}
	sc := NewServiceContainer(cfg, observability.NewNopLogger()).WithFeedbackAPI(api)
	require.NoError(t, sc.Initialize(context.Background()))
	return sc, api
}

func TestServiceContainer_Initialize(t *testing.T) {
	sc, api := newTestContainer(t)
	defer func() { _ = sc.Shutdown(context.Background()) }()

	got, err := sc.GetFeedbackAPI()
	require.NoError(t, err)
	assert.Same(t, api, got)

	renderer, err := sc.GetRenderer()
	require.NoError(t, err)
	assert.NotNil(t, renderer)

	widgets, err := sc.GetWidgets()
	require.NoError(t, err)
	assert.NotNil(t, widgets)

	dashboards, err := sc.GetDashboards()
	require.NoError(t, err)
	assert.NotNil(t, dashboards)

	assert.NotNil(t, sc.GetConfig())
	assert.NotNil(t, sc.GetLogger())
}

func TestServiceContainer_DefaultClient(t *testing.T) {
	cfg := config.Default()
	sc := NewServiceContainer(cfg, observability.NewNopLogger())
	require.NoError(t, sc.Initialize(context.Background()))
	defer func() { _ = sc.Shutdown(context.Background()) }()

	api, err := sc.GetFeedbackAPI()
	require.NoError(t, err)
	assert.NotNil(t, api)
}

func TestServiceContainer_UnknownService(t *testing.T) {
	sc, _ := newTestContainer(t)
	defer func() { _ = sc.Shutdown(context.Background()) }()

	_, err := sc.GetService("nope")
	assert.Error(t, err)

	_, err = GetServiceAs[int](sc, ServiceRenderer)
	assert.Error(t, err)
}

func TestServiceContainer_ShutdownStopsPollers(t *testing.T) {
	sc, api := newTestContainer(t)
	api.On("List", mock.Anything).Return(nil, nil)

	dashboards, err := sc.GetDashboards()
	require.NoError(t, err)
	ctx := contextutils.WithBearerToken(context.Background(), "token")
	d := dashboards.Get("token")
	require.NoError(t, d.Mount(ctx))
	require.True(t, d.IsMounted())

	require.NoError(t, sc.Shutdown(context.Background()))
	assert.False(t, d.IsMounted())
	assert.Equal(t, 0, dashboards.Len())

	// a second shutdown is a no-op
	assert.NoError(t, sc.Shutdown(context.Background()))
}
