package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pribylovaa/go-library-catalog/internal/models"
	"github.com/pribylovaa/go-library-catalog/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// bookDoc - документ коллекции books. Владелец хранится в поле user.
type bookDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Author    string             `bson:"author"`
	Year      int                `bson:"year"`
	Genre     string             `bson:"genre"`
	Read      bool               `bson:"read"`
	User      string             `bson:"user"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt *time.Time         `bson:"updated_at,omitempty"`
}

func (d bookDoc) toModel() models.Book {
	return models.Book{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Author:    d.Author,
		Year:      d.Year,
		Genre:     d.Genre,
		Read:      d.Read,
		Owner:     d.User,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ownedFilter - фильтр по id и владельцу. Некорректный id равносилен отсутствию книги.
func ownedFilter(owner, id string) (bson.D, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, false
	}

	return bson.D{{Key: "_id", Value: oid}, {Key: "user", Value: owner}}, true
}

// toMS - MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

func (m *Mongo) SaveBook(ctx context.Context, book *models.Book) (string, error) {
	const op = "storage/mongo/SaveBook"

	doc := bookDoc{
		Title:     book.Title,
		Author:    book.Author,
		Year:      book.Year,
		Genre:     book.Genre,
		Read:      book.Read,
		User:      book.Owner,
		CreatedAt: toMS(book.CreatedAt),
	}

	res, err := m.books.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("%s: inserted id type", op)
	}

	return oid.Hex(), nil
}

func (m *Mongo) BookByID(ctx context.Context, owner, id string) (*models.Book, error) {
	const op = "storage/mongo/BookByID"

	filter, ok := ownedFilter(owner, id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc bookDoc
	if err := m.books.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b := doc.toModel()
	return &b, nil
}

// listFilter - фильтр выдачи: владелец, подстрока в title/author, статус прочтения.
func listFilter(owner string, f models.BookFilter) bson.D {
	filter := bson.D{{Key: "user", Value: owner}}

	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "author", Value: re}},
		}})
	}

	if f.Read != nil {
		filter = append(filter, bson.E{Key: "read", Value: *f.Read})
	}

	return filter
}

// ListBooks - страница книг владельца в порядке вставки (_id растёт монотонно).
func (m *Mongo) ListBooks(ctx context.Context, owner string, f models.BookFilter, offset, limit int) ([]models.Book, int, error) {
	const op = "storage/mongo/ListBooks"

	filter := listFilter(owner, f)

	total, err := m.books.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	if limit <= 0 || int64(offset) >= total {
		return []models.Book{}, int(total), nil
	}

	items := make([]models.Book, 0, limit)

	findOpts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := m.books.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc bookDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("%s: decode: %w", op, err)
		}
		items = append(items, doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return items, int(total), nil
}

func (m *Mongo) UpdateBook(ctx context.Context, owner, id string, patch models.BookPatch, updatedAt time.Time) error {
	const op = "storage/mongo/UpdateBook"

	filter, ok := ownedFilter(owner, id)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	set := bson.D{{Key: "updated_at", Value: toMS(updatedAt)}}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Author != nil {
		set = append(set, bson.E{Key: "author", Value: *patch.Author})
	}
	if patch.Year != nil {
		set = append(set, bson.E{Key: "year", Value: *patch.Year})
	}
	if patch.Genre != nil {
		set = append(set, bson.E{Key: "genre", Value: *patch.Genre})
	}
	if patch.Read != nil {
		set = append(set, bson.E{Key: "read", Value: *patch.Read})
	}

	res, err := m.books.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func (m *Mongo) DeleteBook(ctx context.Context, owner, id string) error {
	const op = "storage/mongo/DeleteBook"

	filter, ok := ownedFilter(owner, id)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	res, err := m.books.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
