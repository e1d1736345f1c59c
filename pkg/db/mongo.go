package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spearch/pkg/domain"
)

const (
	institutionCollection = "institution"
	speakerCollection     = "speaker"
	speechCollection      = "speech"
)

// Client wraps the MongoDB client and database connection
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
}

// NewClient creates a new database client
func NewClient(connectionString, databaseName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &Client{}
	}

	return &Client{
		mongoClient: mongoClient,
		database:    mongoClient.Database(databaseName),
	}
}

// Connect verifies the connection to MongoDB and creates the speaker name index
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	if err := c.mongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}

	_, err := c.database.Collection(speakerCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create speaker index: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

type institutionDocument struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
}

type speakerDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	ProfileURL string             `bson:"url_psp,omitempty"`
}

type speechDocument struct {
	InstitutionID primitive.ObjectID `bson:"institution_id"`
	SpeakerID     primitive.ObjectID `bson:"speaker_id"`
	SpeakerName   string             `bson:"speaker_name"`

	domain.SpeechRecord `bson:",inline"`
}

// EnsureInstitution returns the institution called name, creating it if needed
func (c *Client) EnsureInstitution(ctx context.Context, name string) (domain.Institution, error) {
	var doc institutionDocument
	err := c.database.Collection(institutionCollection).FindOneAndUpdate(ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": bson.M{"name": name}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return domain.Institution{}, fmt.Errorf("upsert institution: %w", err)
	}
	return domain.Institution{ID: doc.ID.Hex(), Name: doc.Name}, nil
}

// FindOrCreateSpeaker looks the speaker up by name; the oldest match wins
func (c *Client) FindOrCreateSpeaker(ctx context.Context, name, profileURL string) (domain.Speaker, error) {
	onInsert := bson.M{"name": name}
	if profileURL != "" {
		onInsert["url_psp"] = profileURL
	}

	var doc speakerDocument
	err := c.database.Collection(speakerCollection).FindOneAndUpdate(ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": onInsert},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After).
			SetSort(bson.D{{Key: "_id", Value: 1}}),
	).Decode(&doc)
	if err != nil {
		return domain.Speaker{}, fmt.Errorf("upsert speaker: %w", err)
	}
	return domain.Speaker{ID: doc.ID.Hex(), Name: doc.Name, ProfileURL: doc.ProfileURL}, nil
}

// SaveSpeech inserts one speech
func (c *Client) SaveSpeech(ctx context.Context, institution domain.Institution, speaker domain.Speaker, record domain.SpeechRecord) error {
	institutionID, err := primitive.ObjectIDFromHex(institution.ID)
	if err != nil {
		return fmt.Errorf("institution id: %w", err)
	}
	speakerID, err := primitive.ObjectIDFromHex(speaker.ID)
	if err != nil {
		return fmt.Errorf("speaker id: %w", err)
	}

	_, err = c.database.Collection(speechCollection).InsertOne(ctx, speechDocument{
		InstitutionID: institutionID,
		SpeakerID:     speakerID,
		SpeakerName:   speaker.Name,
		SpeechRecord:  record,
	})
	if err != nil {
		return fmt.Errorf("insert speech: %w", err)
	}
	return nil
}

// DeleteAllSpeeches removes the institution's speeches
func (c *Client) DeleteAllSpeeches(ctx context.Context, institution domain.Institution) (int64, error) {
	institutionID, err := primitive.ObjectIDFromHex(institution.ID)
	if err != nil {
		return 0, fmt.Errorf("institution id: %w", err)
	}

	res, err := c.database.Collection(speechCollection).DeleteMany(ctx, bson.M{"institution_id": institutionID})
	if err != nil {
		return 0, fmt.Errorf("delete speeches: %w", err)
	}
	return res.DeletedCount, nil
}

// SpeechSources returns the distinct day pages the institution's speeches came from
func (c *Client) SpeechSources(ctx context.Context, institution domain.Institution) (map[string]bool, error) {
	institutionID, err := primitive.ObjectIDFromHex(institution.ID)
	if err != nil {
		return nil, fmt.Errorf("institution id: %w", err)
	}

	cursor, err := c.database.Collection(speechCollection).Find(ctx,
		bson.M{"institution_id": institutionID},
		options.Find().SetProjection(bson.M{"source_url": 1, "_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer cursor.Close(ctx)

	sources := make(map[string]bool)
	for cursor.Next(ctx) {
		var result struct {
			URL string `bson:"source_url"`
		}
		if err := cursor.Decode(&result); err != nil {
			continue // Skip invalid documents
		}
		if result.URL != "" {
			sources[result.URL] = true
		}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return sources, nil
}
