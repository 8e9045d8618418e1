package textract

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/google/uuid"

	"github.com/terratensor/pdfredact/internal/awserr"
	"github.com/terratensor/pdfredact/internal/document"
)

// API - методы клиента Textract, которые нужны адаптеру.
type API interface {
	StartDocumentTextDetection(ctx context.Context, in *textract.StartDocumentTextDetectionInput, optFns ...func(*textract.Options)) (*textract.StartDocumentTextDetectionOutput, error)
	GetDocumentTextDetection(ctx context.Context, in *textract.GetDocumentTextDetectionInput, optFns ...func(*textract.Options)) (*textract.GetDocumentTextDetectionOutput, error)
}

// Client реализует JobAPI поверх Amazon Textract.
type Client struct {
	api    API
	jobTag string
}

func NewClient(api API, jobTag string) *Client {
	return &Client{api: api, jobTag: jobTag}
}

func (c *Client) Start(ctx context.Context, bucket, key string) (string, error) {
	in := &textract.StartDocumentTextDetectionInput{
		DocumentLocation: &types.DocumentLocation{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
		ClientRequestToken: aws.String(uuid.NewString()),
	}
	if c.jobTag != "" {
		in.JobTag = aws.String(c.jobTag)
	}
	out, err := c.api.StartDocumentTextDetection(ctx, in)
	if err != nil {
		return "", awserr.Describe(err)
	}
	return aws.ToString(out.JobId), nil
}

// Status запрашивает одну запись результата, чтобы не тянуть блоки ради статуса.
func (c *Client) Status(ctx context.Context, jobID string) (JobStatus, string, error) {
	out, err := c.api.GetDocumentTextDetection(ctx, &textract.GetDocumentTextDetectionInput{
		JobId:      aws.String(jobID),
		MaxResults: aws.Int32(1),
	})
	if err != nil {
		return "", "", awserr.Describe(err)
	}
	return mapStatus(out.JobStatus), aws.ToString(out.StatusMessage), nil
}

func (c *Client) FetchPage(ctx context.Context, jobID, token string) (Page, error) {
	in := &textract.GetDocumentTextDetectionInput{JobId: aws.String(jobID)}
	if token != "" {
		in.NextToken = aws.String(token)
	}
	out, err := c.api.GetDocumentTextDetection(ctx, in)
	if err != nil {
		return Page{}, awserr.Describe(err)
	}

	page := Page{
		Blocks:    make([]Block, 0, len(out.Blocks)),
		NextToken: aws.ToString(out.NextToken),
	}
	for _, b := range out.Blocks {
		page.Blocks = append(page.Blocks, convertBlock(b))
	}
	return page, nil
}

func mapStatus(s types.JobStatus) JobStatus {
	switch s {
	case types.JobStatusInProgress:
		return StatusRunning
	case types.JobStatusSucceeded:
		return StatusSucceeded
	case types.JobStatusPartialSuccess:
		return StatusPartialSuccess
	case types.JobStatusFailed:
		return StatusFailed
	default:
		return JobStatus(s)
	}
}

func convertBlock(b types.Block) Block {
	out := Block{
		Type: string(b.BlockType),
		Text: aws.ToString(b.Text),
		Page: int(aws.ToInt32(b.Page)),
	}
	if b.Geometry != nil && b.Geometry.BoundingBox != nil {
		bb := b.Geometry.BoundingBox
		out.Box = document.BoundingBox{
			Left:   float64(bb.Left),
			Top:    float64(bb.Top),
			Width:  float64(bb.Width),
			Height: float64(bb.Height),
		}
	}
	// Для одностраничных документов Textract может не заполнять Page.
	if out.Page == 0 {
		out.Page = 1
	}
	return out
}
