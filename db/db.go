package db

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"github.com/jsphweid/chordex/annotation"
)

const (
	// DynamoDB caps BatchWriteItem at 25 requests
	maxBatchWrite    = 25
	maxWriteAttempts = 8
)

var ErrUnprocessed = errors.New("db: items left unprocessed")

// one chord annotation row; PK is the track, SK orders rows within it
type item struct {
	PK    string
	SK    int
	Start float64
	End   float64
	Chord string
}

// Store keeps chord annotations per track in a DynamoDB table.
type Store struct {
	client dynamodbiface.DynamoDBAPI
	table  string

	// first wait before resending unprocessed items, doubled per attempt
	retryDelay time.Duration
}

func NewStore(endpoint string, region string, table string) (*Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(region),
		Endpoint: aws.String(endpoint),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create a new DynamoDB session: %w", err)
	}
	return NewStoreWithClient(dynamodb.New(sess), table), nil
}

func NewStoreWithClient(client dynamodbiface.DynamoDBAPI, table string) *Store {
	return &Store{client: client, table: table, retryDelay: 50 * time.Millisecond}
}

// GetAnnotations returns the rows of a track ordered by start. A track
// without rows yields empty columns.
func (s *Store) GetAnnotations(track string) (annotation.Columns, error) {
	items, err := s.queryTrack(track, false)
	if err != nil {
		return annotation.Columns{}, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Start != items[j].Start {
			return items[i].Start < items[j].Start
		}
		return items[i].SK < items[j].SK
	})

	var cols annotation.Columns
	for _, it := range items {
		cols.Starts = append(cols.Starts, it.Start)
		cols.Ends = append(cols.Ends, it.End)
		cols.Chords = append(cols.Chords, it.Chord)
	}
	return cols, nil
}

// queryTrack reads every item of track. With keysOnly only PK and SK are set.
func (s *Store) queryTrack(track string, keysOnly bool) ([]item, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":pk": {S: aws.String(track)},
		},
	}
	if keysOnly {
		input.ProjectionExpression = aws.String("#pk, #sk")
		input.ExpressionAttributeNames = map[string]*string{
			"#pk": aws.String("PK"),
			"#sk": aws.String("SK"),
		}
	}

	var items []item
	var unmarshalErr error
	err := s.client.QueryPages(input, func(page *dynamodb.QueryOutput, lastPage bool) bool {
		var pageItems []item
		if unmarshalErr = dynamodbattribute.UnmarshalListOfMaps(page.Items, &pageItems); unmarshalErr != nil {
			return false
		}
		items = append(items, pageItems...)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("querying track %v: %w", track, err)
	}
	if unmarshalErr != nil {
		return nil, fmt.Errorf("decoding track %v: %w", track, unmarshalErr)
	}
	return items, nil
}

// PutAnnotations replaces the rows of track with cols. Rows are written
// first, then rows left over from a longer earlier put are deleted.
func (s *Store) PutAnnotations(track string, cols annotation.Columns) error {
	existing, err := s.queryTrack(track, true)
	if err != nil {
		return err
	}

	var requests []*dynamodb.WriteRequest
	for i := 0; i < cols.Len(); i++ {
		av, err := dynamodbattribute.MarshalMap(item{
			PK:    track,
			SK:    i,
			Start: cols.Starts[i],
			End:   cols.Ends[i],
			Chord: cols.Chords[i],
		})
		if err != nil {
			return err
		}
		requests = append(requests, &dynamodb.WriteRequest{PutRequest: &dynamodb.PutRequest{Item: av}})
	}

	for _, it := range existing {
		if it.SK < cols.Len() {
			continue
		}
		key, err := dynamodbattribute.MarshalMap(struct {
			PK string
			SK int
		}{track, it.SK})
		if err != nil {
			return err
		}
		requests = append(requests, &dynamodb.WriteRequest{DeleteRequest: &dynamodb.DeleteRequest{Key: key}})
	}

	for len(requests) > 0 {
		n := len(requests)
		if n > maxBatchWrite {
			n = maxBatchWrite
		}
		if err := s.writeBatch(track, requests[:n]); err != nil {
			return err
		}
		requests = requests[n:]
	}
	return nil
}

// writeBatch sends one batch and resends whatever DynamoDB hands back,
// backing off exponentially and giving up after maxWriteAttempts.
func (s *Store) writeBatch(track string, requests []*dynamodb.WriteRequest) error {
	pending := map[string][]*dynamodb.WriteRequest{s.table: requests}
	delay := s.retryDelay
	for attempt := 1; ; attempt++ {
		out, err := s.client.BatchWriteItem(&dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("writing track %v: %w", track, err)
		}
		pending = out.UnprocessedItems
		if len(pending) == 0 {
			return nil
		}
		if attempt == maxWriteAttempts {
			return fmt.Errorf("writing track %v: %w: %d requests after %d attempts", track, ErrUnprocessed, len(pending[s.table]), attempt)
		}
		time.Sleep(delay)
		delay *= 2
	}
}
