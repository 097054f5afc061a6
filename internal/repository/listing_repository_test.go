package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/Baaaki/market-square/internal/models"
	"github.com/Baaaki/market-square/internal/repository"
	"github.com/Baaaki/market-square/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ListingRepositoryTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	repo   *repository.ListingRepository
	owner  *models.User
	base   time.Time
}

func (s *ListingRepositoryTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.repo = repository.NewListingRepository(s.testDB.DB)
}

func (s *ListingRepositoryTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *ListingRepositoryTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	s.owner = testutil.DefaultTestUser()
	require.NoError(s.T(), s.testDB.DB.Create(s.owner).Error)
	s.base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
}

func (s *ListingRepositoryTestSuite) mustCreate(listing *models.Listing) *models.Listing {
	require.NoError(s.T(), s.repo.Create(context.Background(), listing))
	return listing
}

func ids(listings []models.Listing) []string {
	result := make([]string, 0, len(listings))
	for _, l := range listings {
		result = append(result, l.ID)
	}
	return result
}

func (s *ListingRepositoryTestSuite) TestCreateStoresImagesInOrder() {
	ctx := context.Background()
	item := s.mustCreate(testutil.CreateTestItem(s.owner.ID, "Camera", s.base, "z.jpg", "a.jpg", "m.jpg"))

	urls, err := s.repo.ImageURLs(ctx, item.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"z.jpg", "a.jpg", "m.jpg"}, urls)

	got, err := s.repo.GetByID(ctx, models.KindItem, item.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), []string{"z.jpg", "a.jpg", "m.jpg"}, got.ImageURLs())
	assert.Equal(s.T(), s.owner.Username, got.SellerUsername)
	assert.Equal(s.T(), "Electronics", got.Category)
}

func (s *ListingRepositoryTestSuite) TestCreateRollsBackOnImageFailure() {
	item := testutil.CreateTestItem(s.owner.ID, "Broken", s.base, "one.jpg", "two.jpg")
	item.Images[1].ID = item.Images[0].ID

	err := s.repo.Create(context.Background(), item)
	require.Error(s.T(), err)

	var items, images int64
	s.testDB.DB.Model(&models.Listing{}).Count(&items)
	s.testDB.DB.Model(&models.Image{}).Count(&images)
	assert.Zero(s.T(), items)
	assert.Zero(s.T(), images)
}

func (s *ListingRepositoryTestSuite) TestGetByIDMissing() {
	got, err := s.repo.GetByID(context.Background(), models.KindItem, "nope")
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), got)
}

func (s *ListingRepositoryTestSuite) TestGetOwnerID() {
	ctx := context.Background()
	track := s.mustCreate(testutil.CreateTestTrack(s.owner.ID, "Tune", "jazz", "100", "calm", s.base))

	owner, found, err := s.repo.GetOwnerID(ctx, models.KindMusic, track.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), found)
	assert.Equal(s.T(), s.owner.ID, owner)

	_, found, err = s.repo.GetOwnerID(ctx, models.KindItem, track.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), found)
}

func (s *ListingRepositoryTestSuite) TestListOrderAndKind() {
	ctx := context.Background()
	older := s.mustCreate(testutil.CreateTestItem(s.owner.ID, "Older", s.base))
	newer := s.mustCreate(testutil.CreateTestItem(s.owner.ID, "Newer", s.base.Add(time.Hour)))
	s.mustCreate(testutil.CreateTestTrack(s.owner.ID, "Song", "pop", "110", "happy", s.base.Add(2*time.Hour)))

	listings, err := s.repo.List(ctx, models.KindItem, repository.ListingFilter{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{newer.ID, older.ID}, ids(listings))

	byUser, err := s.repo.ListByUser(ctx, models.KindItem, s.owner.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{newer.ID, older.ID}, ids(byUser))
	assert.Empty(s.T(), byUser[0].SellerUsername)
}

func (s *ListingRepositoryTestSuite) TestListFilters() {
	ctx := context.Background()
	calmJazz := s.mustCreate(testutil.CreateTestTrack(s.owner.ID, "Blue Night", "jazz", "80", "calm", s.base))
	sadJazz := s.mustCreate(testutil.CreateTestTrack(s.owner.ID, "Grey Rain", "jazz", "70", "sad", s.base.Add(time.Minute)))
	rock := s.mustCreate(testutil.CreateTestTrack(s.owner.ID, "Loud", "rock", "150", "energetic", s.base.Add(2*time.Minute)))

	tests := []struct {
		name   string
		filter repository.ListingFilter
		want   []string
	}{
		{"no filter", repository.ListingFilter{}, []string{rock.ID, sadJazz.ID, calmJazz.ID}},
		{"genre", repository.ListingFilter{Attributes: map[string]string{"genre": "jazz"}}, []string{sadJazz.ID, calmJazz.ID}},
		{"genre and mood", repository.ListingFilter{Attributes: map[string]string{"genre": "jazz", "mood": "calm"}}, []string{calmJazz.ID}},
		{"tempo", repository.ListingFilter{Attributes: map[string]string{"tempo": "150"}}, []string{rock.ID}},
		{"query title", repository.ListingFilter{Query: "night"}, []string{calmJazz.ID}},
		{"query description", repository.ListingFilter{Query: "SAD JAZZ"}, []string{sadJazz.ID}},
		{"query and genre", repository.ListingFilter{Query: "rain", Attributes: map[string]string{"genre": "rock"}}, []string{}},
		{"empty values ignored", repository.ListingFilter{Attributes: map[string]string{"genre": "", "mood": ""}}, []string{rock.ID, sadJazz.ID, calmJazz.ID}},
		{"non-filter attribute ignored", repository.ListingFilter{Attributes: map[string]string{"location": "nowhere"}}, []string{rock.ID, sadJazz.ID, calmJazz.ID}},
		{"wildcards are literal", repository.ListingFilter{Query: "%"}, []string{}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			listings, err := s.repo.List(ctx, models.KindMusic, tt.filter)
			require.NoError(s.T(), err)
			assert.Equal(s.T(), tt.want, ids(listings))
		})
	}
}

func (s *ListingRepositoryTestSuite) TestItemFilters() {
	ctx := context.Background()
	used := testutil.CreateTestItem(s.owner.ID, "Phone", s.base)
	used.Condition = "used"
	s.mustCreate(used)
	s.mustCreate(testutil.CreateTestItem(s.owner.ID, "Tablet", s.base.Add(time.Minute)))

	listings, err := s.repo.List(ctx, models.KindItem, repository.ListingFilter{
		Attributes: map[string]string{"category": "Electronics", "condition": "used"},
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{used.ID}, ids(listings))
}

func (s *ListingRepositoryTestSuite) TestDeleteRemovesImages() {
	ctx := context.Background()
	item := s.mustCreate(testutil.CreateTestItem(s.owner.ID, "Vase", s.base, "v1.jpg", "v2.jpg"))

	require.NoError(s.T(), s.repo.Delete(ctx, item.ID))

	got, err := s.repo.GetByID(ctx, models.KindItem, item.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)

	urls, err := s.repo.ImageURLs(ctx, item.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), urls)
}

func (s *ListingRepositoryTestSuite) TestDeleteMissing() {
	err := s.repo.Delete(context.Background(), "missing")
	assert.ErrorIs(s.T(), err, gorm.ErrRecordNotFound)
}

func TestListingRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ListingRepositoryTestSuite))
}
