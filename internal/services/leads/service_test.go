package leads

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/BearBump/ShipDesk/internal/apperr"
	"github.com/BearBump/ShipDesk/internal/models"
	"github.com/BearBump/ShipDesk/internal/tracknum"
)

type fakeRepo struct {
	leads   map[uint64]*models.Lead
	nextID  uint64
	existed map[string]bool

	convertErrs  []error
	convertCalls int
	convertTNs   []string
	convertIn    models.ShipmentCreateInput
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: map[uint64]*models.Lead{}, nextID: 1, existed: map[string]bool{}}
}

func (f *fakeRepo) CreateLead(_ context.Context, in models.LeadCreateInput) (*models.Lead, error) {
	l := &models.Lead{
		ID:       f.nextID,
		Name:     in.Name,
		Contact:  in.Contact,
		Details:  in.Details,
		Status:   models.LeadStatusNew,
		ClientID: in.ClientID,
	}
	f.leads[l.ID] = l
	f.nextID++
	return l, nil
}

func (f *fakeRepo) GetLead(_ context.Context, id uint64) (*models.Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return l, nil
}

func (f *fakeRepo) UpdateLeadStatus(_ context.Context, id uint64, status string) (*models.Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if l.Status == models.LeadStatusConverted {
		return nil, apperr.ErrAlreadyConverted
	}
	l.Status = status
	return l, nil
}

func (f *fakeRepo) TrackingNumberExists(_ context.Context, tn string) (bool, error) {
	return f.existed[tn], nil
}

func (f *fakeRepo) ConvertLead(_ context.Context, leadID uint64, tn string, in models.ShipmentCreateInput) (*models.Shipment, error) {
	f.convertCalls++
	f.convertTNs = append(f.convertTNs, tn)
	f.convertIn = in
	if len(f.convertErrs) > 0 {
		err := f.convertErrs[0]
		f.convertErrs = f.convertErrs[1:]
		return nil, err
	}
	l, ok := f.leads[leadID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if l.Status == models.LeadStatusConverted {
		return nil, apperr.ErrAlreadyConverted
	}
	l.Status = models.LeadStatusConverted
	return &models.Shipment{
		ID:             100 + leadID,
		TrackingNumber: tn,
		Status:         models.ShipmentStatusPending,
		UserID:         l.ClientID,
	}, nil
}

func newService(r *fakeRepo) *Service {
	return New(r, tracknum.New())
}

func TestCreateLead_RequiresNameAndContact(t *testing.T) {
	svc := newService(newFakeRepo())

	_, err := svc.CreateLead(context.Background(), models.LeadCreateInput{Contact: "a@b.c"})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.CreateLead(context.Background(), models.LeadCreateInput{Name: "  ", Contact: "a@b.c"})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.CreateLead(context.Background(), models.LeadCreateInput{Name: "ACME", Contact: "a@b.c"})
	require.NoError(t, err)
}

func TestUpdateStatus_RejectsUnknown(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	lead, err := svc.CreateLead(context.Background(), models.LeadCreateInput{Name: "ACME", Contact: "a@b.c"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), lead.ID, "WON")
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	got, err := svc.UpdateStatus(context.Background(), lead.ID, models.LeadStatusQuoted)
	require.NoError(t, err)
	require.Equal(t, models.LeadStatusQuoted, got.Status)
}

func TestConvertToShipment_OneShot(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	clientID := uint64(7)
	lead, err := svc.CreateLead(context.Background(), models.LeadCreateInput{
		Name:     "ACME",
		Contact:  "a@b.c",
		ClientID: &clientID,
	})
	require.NoError(t, err)

	sh, err := svc.ConvertToShipment(context.Background(), lead.ID, models.ShipmentCreateInput{})
	require.NoError(t, err)
	require.Len(t, sh.TrackingNumber, tracknum.DefaultLength)
	require.NotNil(t, sh.UserID)
	require.Equal(t, clientID, *sh.UserID)

	_, err = svc.ConvertToShipment(context.Background(), lead.ID, models.ShipmentCreateInput{})
	require.ErrorIs(t, err, apperr.ErrAlreadyConverted)
}

func TestConvertToShipment_RetriesOnInsertRace(t *testing.T) {
	repo := newFakeRepo()
	repo.convertErrs = []error{
		&pgconn.PgError{Code: "23505"},
		&pgconn.PgError{Code: "23505"},
	}
	svc := newService(repo)

	lead, err := svc.CreateLead(context.Background(), models.LeadCreateInput{Name: "ACME", Contact: "a@b.c"})
	require.NoError(t, err)

	sh, err := svc.ConvertToShipment(context.Background(), lead.ID, models.ShipmentCreateInput{})
	require.NoError(t, err)
	require.Equal(t, 3, repo.convertCalls)
	// каждая попытка идёт с новым номером
	require.NotEqual(t, repo.convertTNs[0], repo.convertTNs[1])
	require.Equal(t, repo.convertTNs[2], sh.TrackingNumber)
}

func TestConvertToShipment_NotFound(t *testing.T) {
	svc := newService(newFakeRepo())

	_, err := svc.ConvertToShipment(context.Background(), 404, models.ShipmentCreateInput{})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
