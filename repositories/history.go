//go:generate go run go.uber.org/mock/mockgen -source=history.go -destination=../mocks/mock_history_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IHistoryRepository interface {
	StoreMessage(message StoredMessage) error
	GetMessages(cursor *string) ([]StoredMessage, *string, error)
	Search(ctx context.Context, terms string, limit int) ([]StoredMessage, uint64, error)
	Flush() error
}

// HistoryRepository persists relayed chat messages in BadgerDB and
// mirrors their text into a Bluge index for full-text search.
// Presence itself is never persisted: the session registry is pure
// in-memory state and a restart empties the room.
type HistoryRepository struct {
	db            *badger.DB
	writer        *bluge.Writer
	log           *slog.Logger
	limitMessages *int
}

func NewHistoryRepository(db *badger.DB, writer *bluge.Writer, log *slog.Logger, limitMessages *int) HistoryRepository {
	return HistoryRepository{db: db, writer: writer, log: log, limitMessages: limitMessages}
}

// StoredMessage is the on-disk shape of one relayed chat message.
type StoredMessage struct {
	ID          uuid.UUID `json:"id"`
	From        string    `json:"from"`
	DisplayName string    `json:"display_name"`
	Content     string    `json:"content"`
	Lang        string    `json:"lang,omitempty"`
	At          time.Time `json:"at"`
}

const messagePrefix = "msg:"

// StoreMessage persists a message in BadgerDB and indexes it in Bluge.
// The key is formatted as "msg:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (h HistoryRepository) StoreMessage(message StoredMessage) error {
	key := fmt.Sprintf("%s%019d:%s", messagePrefix, message.At.UnixNano(), message.ID)

	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	err = h.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return err
	}

	doc := bluge.NewDocument(key)
	doc.AddField(bluge.NewTextField("content", message.Content).StoreValue())
	doc.AddField(bluge.NewKeywordField("author", message.DisplayName).StoreValue())
	doc.AddField(bluge.NewKeywordField("lang", message.Lang).StoreValue())
	doc.AddField(bluge.NewDateTimeField("at", message.At))
	return h.writer.Update(doc.ID(), doc)
}

// GetMessages retrieves messages newest-first using a reverse prefix scan.
// Thanks to the padded timestamp in the key, messages are naturally sorted by time.
// It stops collecting messages once the configured limitMessages is reached;
// the returned cursor resumes the scan on the next call.
func (h HistoryRepository) GetMessages(cursor *string) ([]StoredMessage, *string, error) {
	var byteMessages [][]byte
	var lastKey string
	err := h.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		prefixLen := len(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible key, then walk backwards
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if h.limitMessages != nil && len(byteMessages) == *h.limitMessages {
				h.log.Debug(fmt.Sprintf("Maximum of %d message reached", *h.limitMessages))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]StoredMessage, 0, len(byteMessages))
	for _, b := range byteMessages {
		var message StoredMessage
		if err = json.Unmarshal(b, &message); err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	return messages, &lastKey, nil
}

// Search runs a full-text match query over message contents and
// resolves each hit back to the full record in BadgerDB.
func (h HistoryRepository) Search(ctx context.Context, terms string, limit int) ([]StoredMessage, uint64, error) {
	reader, err := h.writer.Reader()
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewMatchQuery(terms).SetField("content")
	request := bluge.NewTopNSearch(limit, query).WithStandardAggregations()

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, err
	}

	var keys []string
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, 0, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				keys = append(keys, string(value))
			}
			return true
		})
		if err != nil {
			return nil, 0, err
		}
	}
	total := iterator.Aggregations().Count()

	var messages []StoredMessage
	err = h.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			item, err := txn.Get([]byte(key))
			if err != nil {
				// Index may briefly reference a key the store no longer has
				h.log.Debug(fmt.Sprintf("Indexed key missing from store : %s", key))
				continue
			}
			err = item.Value(func(value []byte) error {
				var message StoredMessage
				if err := json.Unmarshal(value, &message); err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// Flush forces pending index segments to become searchable.
func (h HistoryRepository) Flush() error {
	// Bluge flushes on its own; an explicit batch boundary is enough here.
	return h.writer.Batch(bluge.NewBatch())
}
