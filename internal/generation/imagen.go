package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// ImagenTransformer runs the transformation on Vertex AI Imagen.
type ImagenTransformer struct {
	projectID          string
	location           string
	model              string
	apiKey             string
	serviceAccountJSON string
}

// ImagenConfig describes how to connect to Imagen.
type ImagenConfig struct {
	ProjectID          string
	Location           string
	Model              string
	APIKey             string
	ServiceAccountJSON string
}

// NewImagenTransformer wires an Imagen-backed transformer.
func NewImagenTransformer(cfg ImagenConfig) *ImagenTransformer {
	return &ImagenTransformer{
		projectID:          strings.TrimSpace(cfg.ProjectID),
		location:           strings.TrimSpace(cfg.Location),
		model:              strings.TrimSpace(cfg.Model),
		apiKey:             strings.TrimSpace(cfg.APIKey),
		serviceAccountJSON: strings.TrimSpace(cfg.ServiceAccountJSON),
	}
}

// Transform runs an Imagen edit request and returns the generated bytes.
func (v *ImagenTransformer) Transform(ctx context.Context, req Request) (Result, error) {
	if v == nil || v.projectID == "" || v.location == "" || v.model == "" {
		return Result{}, fmt.Errorf("imagen: missing project/location/model")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return Result{}, fmt.Errorf("imagen: prompt is required")
	}
	if len(req.Image) == 0 {
		return Result{}, fmt.Errorf("imagen: reference image is required")
	}

	instance, err := structpb.NewValue(map[string]any{
		"prompt": req.Prompt,
		"image": map[string]any{
			"bytesBase64Encoded": base64.StdEncoding.EncodeToString(req.Image),
		},
	})
	if err != nil {
		return Result{}, err
	}

	params, err := structpb.NewValue(map[string]any{
		"sampleCount":   1,
		"editMode":      "inpainting-free-form",
		"guidanceScale": Guidance,
	})
	if err != nil {
		return Result{}, err
	}

	endpoint := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", v.projectID, v.location, v.model)
	options := []option.ClientOption{option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", v.location))}
	if v.serviceAccountJSON != "" {
		options = append(options, option.WithCredentialsJSON([]byte(v.serviceAccountJSON)))
	} else if v.apiKey != "" {
		options = append(options, option.WithAPIKey(v.apiKey))
	}

	client, err := aiplatform.NewPredictionClient(ctx, options...)
	if err != nil {
		return Result{}, fmt.Errorf("imagen: prediction client: %w", err)
	}
	defer client.Close()

	resp, err := client.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:   endpoint,
		Instances:  []*structpb.Value{instance},
		Parameters: params,
	})
	if err != nil {
		return Result{}, fmt.Errorf("imagen: predict: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return Result{}, fmt.Errorf("imagen: %w", ErrNoImage)
	}

	field := resp.Predictions[0].GetStructValue().GetFields()["bytesBase64Encoded"]
	if field == nil {
		return Result{}, fmt.Errorf("imagen: %w", ErrNoImage)
	}

	data, err := base64.StdEncoding.DecodeString(field.GetStringValue())
	if err != nil {
		return Result{}, fmt.Errorf("imagen: decode result: %w", err)
	}
	return Result{Data: data}, nil
}
