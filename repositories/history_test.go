package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/database"
	"github.com/stretchr/testify/require"
)

func Test_Store_And_Get_Messages_Newest_First(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(database.DefaultPath)
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	repository := NewHistoryRepository(badgerDB, blugeWriter, slog.Default(), nil)
	at := time.Now().UTC()

	for i, name := range []string{"Alice", "Bob", "Clara"} {
		err = repository.StoreMessage(StoredMessage{
			ID:          uuid.New(),
			From:        fmt.Sprintf("conn-%d", i),
			DisplayName: name,
			Content:     "this message will self destruct in 5 seconds",
			Lang:        "en",
			At:          at.Add(time.Duration(i) * time.Minute),
		})
		req.NoError(err)
	}

	// When fetching messages
	messages, _, err := repository.GetMessages(nil)
	req.NoError(err)

	// Then the newest comes first
	req.Len(messages, 3)
	req.Equal("Clara", messages[0].DisplayName)
	req.Equal("Alice", messages[2].DisplayName)
}

func Test_HistoryRepository_Pagination(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(database.DefaultPath)
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	limit := 4
	repository := NewHistoryRepository(badgerDB, blugeWriter, slog.Default(), &limit)
	now := time.Now().UTC()

	for i := 1; i <= 10; i++ {
		err = repository.StoreMessage(StoredMessage{
			ID:          uuid.New(),
			From:        fmt.Sprintf("conn-%d", i),
			DisplayName: fmt.Sprintf("user_%d", i),
			Content:     fmt.Sprintf("Message %d", i),
			At:          now.Add(time.Duration(i) * time.Minute),
		})
		req.NoError(err)
	}

	// --- PAGE 1 ---
	page1, cursor1, err := repository.GetMessages(nil)
	req.NoError(err)
	req.Len(page1, 4)
	req.Equal("user_10", page1[0].DisplayName)
	req.Equal("user_7", page1[3].DisplayName)
	req.NotEmpty(cursor1)

	// --- PAGE 2 ---
	page2, cursor2, err := repository.GetMessages(cursor1)
	req.NoError(err)
	req.Len(page2, 4)
	req.Equal("user_6", page2[0].DisplayName)
	req.Equal("user_3", page2[3].DisplayName)
	req.NotEmpty(cursor2)

	// --- PAGE 3 (end) ---
	page3, cursor3, err := repository.GetMessages(cursor2)
	req.NoError(err)
	req.Len(page3, 2)
	req.Equal("user_2", page3[0].DisplayName)
	req.Equal("user_1", page3[1].DisplayName)

	// Continuing past the end yields nothing
	page4, _, err := repository.GetMessages(cursor3)
	req.NoError(err)
	req.Empty(page4)
}

func Test_Search_Finds_Messages_By_Content(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(database.DefaultPath)
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	repository := NewHistoryRepository(badgerDB, blugeWriter, slog.Default(), nil)
	now := time.Now().UTC()

	messages := []StoredMessage{
		{ID: uuid.New(), From: "c1", DisplayName: "Alice", Content: "meet me by the fountain", Lang: "en", At: now},
		{ID: uuid.New(), From: "c2", DisplayName: "Bob", Content: "the fountain is crowded", Lang: "en", At: now.Add(time.Minute)},
		{ID: uuid.New(), From: "c3", DisplayName: "Clara", Content: "walking to the garden", Lang: "en", At: now.Add(2 * time.Minute)},
	}
	for _, m := range messages {
		req.NoError(repository.StoreMessage(m))
	}
	req.NoError(repository.Flush())

	// When searching the full-text index
	hits, total, err := repository.Search(context.Background(), "fountain", 10)
	req.NoError(err)

	// Then only the matching messages are resolved
	req.Equal(uint64(2), total)
	req.Len(hits, 2)
	for _, hit := range hits {
		req.Contains(hit.Content, "fountain")
	}
}
