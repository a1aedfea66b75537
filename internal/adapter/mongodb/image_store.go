package mongodb

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ImageStore keeps car image binaries in a GridFS bucket, addressed by
// their storage path (cars/{carId}/image-...). Public URLs point back at
// this service's /files/ route.
type ImageStore struct {
	db            *mongo.Database
	publicBaseURL string
}

func NewImageStore(client *mongo.Client, dbName, publicBaseURL string) *ImageStore {
	return &ImageStore{
		db:            client.Database(dbName),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *ImageStore) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	bucket, err := gridfs.NewBucket(s.db)
	if err != nil {
		return "", err
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	stream, err := bucket.OpenUploadStream(path, opts)
	if err != nil {
		return "", err
	}

	if _, err := stream.Write(data); err != nil {
		stream.Close()
		return "", err
	}
	if err := stream.Close(); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/files/%s", s.publicBaseURL, path), nil
}

func (s *ImageStore) Remove(ctx context.Context, path string) error {
	bucket, err := gridfs.NewBucket(s.db)
	if err != nil {
		return err
	}

	cursor, err := bucket.FindContext(ctx, bson.M{"filename": path})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	found := false
	for cursor.Next(ctx) {
		var file struct {
			ID interface{} `bson:"_id"`
		}
		if err := cursor.Decode(&file); err != nil {
			return err
		}
		if err := bucket.DeleteContext(ctx, file.ID); err != nil {
			return err
		}
		found = true
	}
	if err := cursor.Err(); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("object not found: %s", path)
	}
	return nil
}

func (s *ImageStore) Open(ctx context.Context, path string) ([]byte, string, error) {
	bucket, err := gridfs.NewBucket(s.db)
	if err != nil {
		return nil, "", err
	}

	stream, err := bucket.OpenDownloadStreamByName(path)
	if err != nil {
		return nil, "", err
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, "", err
	}

	contentType := "image/jpeg"
	var meta struct {
		Metadata struct {
			ContentType string `bson:"contentType"`
		} `bson:"metadata"`
	}
	if raw := stream.GetFile().Metadata; raw != nil {
		if err := bson.Unmarshal(raw, &meta.Metadata); err == nil && meta.Metadata.ContentType != "" {
			contentType = meta.Metadata.ContentType
		}
	}

	return data, contentType, nil
}
