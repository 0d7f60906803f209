package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Yapcheekian/shrt/models"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLink() models.ShortLink {
	return models.ShortLink{
		ID:          12345,
		ShortCode:   "abc123",
		OriginalURL: "https://example.com/some/long/url",
		CreatedAt:   time.Date(2024, 2, 20, 9, 20, 41, 0, time.UTC),
	}
}

func mustPayload(t *testing.T, link models.ShortLink) string {
	payload, err := json.Marshal(link)
	require.NoError(t, err)
	return string(payload)
}

func TestRedisStoreExists(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedisStore(client)

	mock.ExpectExists("shortlink:abc123").SetVal(1)
	exists, err := s.Exists(context.Background(), "abc123")
	assert.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectExists("shortlink:xxxxxx").SetVal(0)
	exists, err = s.Exists(context.Background(), "xxxxxx")
	assert.NoError(t, err)
	assert.False(t, exists)

	mock.ExpectExists("shortlink:broken").SetErr(errors.New("connection refused"))
	_, err = s.Exists(context.Background(), "broken")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreInsert(t *testing.T) {
	link := testLink()
	payload := mustPayload(t, link)

	tt := []struct {
		desc     string
		mockFunc func(mock redismock.ClientMock)
		checkErr func(t *testing.T, err error)
	}{
		{
			desc: "first writer wins",
			mockFunc: func(mock redismock.ClientMock) {
				mock.ExpectSetNX("shortlink:abc123", payload, 0).SetVal(true)
			},
			checkErr: func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			desc: "taken code is a duplicate key",
			mockFunc: func(mock redismock.ClientMock) {
				mock.ExpectSetNX("shortlink:abc123", payload, 0).SetVal(false)
			},
			checkErr: func(t *testing.T, err error) { assert.True(t, errors.Is(err, ErrDuplicateKey)) },
		},
		{
			desc: "redis failure is not a duplicate key",
			mockFunc: func(mock redismock.ClientMock) {
				mock.ExpectSetNX("shortlink:abc123", payload, 0).SetErr(errors.New("connection refused"))
			},
			checkErr: func(t *testing.T, err error) {
				assert.Error(t, err)
				assert.False(t, errors.Is(err, ErrDuplicateKey))
			},
		},
	}

	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			client, mock := redismock.NewClientMock()
			tc.mockFunc(mock)
			tc.checkErr(t, NewRedisStore(client).Insert(context.Background(), link))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRedisStoreGet(t *testing.T) {
	link := testLink()

	t.Run("short code exists", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet("shortlink:abc123").SetVal(mustPayload(t, link))

		got, err := NewRedisStore(client).Get(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)
		assert.Equal(t, link.ShortCode, got.ShortCode)
		assert.Equal(t, link.OriginalURL, got.OriginalURL)
		assert.True(t, link.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("short code does not exist", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet("shortlink:xxxxxx").RedisNil()

		_, err := NewRedisStore(client).Get(context.Background(), "xxxxxx")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("corrupt payload", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet("shortlink:abc123").SetVal("{not json")

		_, err := NewRedisStore(client).Get(context.Background(), "abc123")
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrNotFound))
	})
}

func TestRedisStorePing(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, NewRedisStore(client).Ping(context.Background()))
}
