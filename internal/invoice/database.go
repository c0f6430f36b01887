package invoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	invoiceBucketName = "invoices"
	messageBucketName = "messages"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// DB defines the interface for database operations
type DB interface {
	// SaveInvoice saves an invoice to the database
	SaveInvoice(invoice *Invoice) error
	// GetInvoice retrieves an invoice by ID
	GetInvoice(id string) (*Invoice, error)
	// ListInvoices returns all invoices
	ListInvoices() ([]*Invoice, error)
	// DeleteInvoice removes an invoice from the database
	DeleteInvoice(id string) error
	// SaveMessage saves a message to the database
	SaveMessage(message *Message) error
	// GetMessage retrieves a message by ID
	GetMessage(id string) (*Message, error)
	// ListMessages returns all messages
	ListMessages() ([]*Message, error)
	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{invoiceBucketName, messageBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// put stores v as JSON under key
func (b *BoltDB) put(bucketName, key string, v any) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", bucketName, err)
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
}

// get decodes the JSON value stored under key into v
func (b *BoltDB) get(bucketName, key string, v any) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%s %s: %w", bucketName, key, ErrNotFound)
		}
		return json.Unmarshal(data, v)
	})
}

// SaveInvoice saves an invoice to the database
func (b *BoltDB) SaveInvoice(invoice *Invoice) error {
	return b.put(invoiceBucketName, invoice.ID, invoice)
}

// GetInvoice retrieves an invoice by ID
func (b *BoltDB) GetInvoice(id string) (*Invoice, error) {
	var invoice Invoice
	if err := b.get(invoiceBucketName, id, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListInvoices returns all invoices
func (b *BoltDB) ListInvoices() ([]*Invoice, error) {
	invoices := make([]*Invoice, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(invoiceBucketName)).ForEach(func(k, v []byte) error {
			var invoice Invoice
			if err := json.Unmarshal(v, &invoice); err != nil {
				return fmt.Errorf("unmarshaling invoice: %w", err)
			}
			invoices = append(invoices, &invoice)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// DeleteInvoice removes an invoice from the database
func (b *BoltDB) DeleteInvoice(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(invoiceBucketName)).Delete([]byte(id))
	})
}

// SaveMessage saves a message to the database
func (b *BoltDB) SaveMessage(message *Message) error {
	return b.put(messageBucketName, message.ID, message)
}

// GetMessage retrieves a message by ID
func (b *BoltDB) GetMessage(id string) (*Message, error) {
	var message Message
	if err := b.get(messageBucketName, id, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// ListMessages returns all messages
func (b *BoltDB) ListMessages() ([]*Message, error) {
	messages := make([]*Message, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(messageBucketName)).ForEach(func(k, v []byte) error {
			var message Message
			if err := json.Unmarshal(v, &message); err != nil {
				return fmt.Errorf("unmarshaling message: %w", err)
			}
			messages = append(messages, &message)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
