package shopify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"marketpush/internal/models"
)

// Create runs the full publication pipeline for one product:
// fetch sales channels, create the product, then stage, upload and
// attach each image. A failed image is recorded in its result slot
// and never fails the product or its siblings; the created product is
// never rolled back.
func (c *Client) Create(req *models.ProductRequest, imgs []models.ImageFile) (*models.PublishResult, error) {
	c.logger.Info("Creating product: %s", req.Title)

	// Best effort: publishing falls back to the store's default
	// channel when this fails.
	channelIDs := c.fetchSalesChannels()

	product, err := c.createProduct(req, channelIDs)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Product created with ID: %s", product.ID)

	result := &models.PublishResult{
		Product:     product,
		Media:       []models.MediaResult{},
		TotalImages: len(imgs),
		Marketplace: string(models.MarketplaceShopify),
	}

	if len(imgs) > 0 {
		c.logger.Info("Uploading %d images...", len(imgs))
		result.Media = c.uploadAndAttachMedia(product.ID, imgs)
	}

	return result, nil
}

func (c *Client) fetchSalesChannels() []string {
	query := `
		query getPublications {
			publications(first: 20) {
				edges {
					node {
						id
						name
					}
				}
			}
		}
	`

	var payload publicationsPayload
	if err := c.execute(query, nil, &payload); err != nil {
		c.logger.Warn("Failed to fetch sales channels, publishing to default channel only: %v", err)
		return nil
	}

	ids := make([]string, 0, len(payload.Publications.Edges))
	for _, edge := range payload.Publications.Edges {
		ids = append(ids, edge.Node.ID)
	}
	return ids
}

func (c *Client) createProduct(req *models.ProductRequest, channelIDs []string) (*models.RemoteProduct, error) {
	mutation := `
		mutation createProduct($input: ProductInput!) {
			productCreate(input: $input) {
				product {
					id
					title
					handle
					status
					tags
					createdAt
				}
				userErrors {
					field
					message
				}
			}
		}
	`

	input := map[string]interface{}{
		"title":           req.Title,
		"descriptionHtml": req.Description,
		"status":          "ACTIVE",
	}

	if tags := req.TagList(); len(tags) > 0 {
		input["tags"] = tags
	}

	if len(channelIDs) > 0 {
		publications := make([]map[string]interface{}, 0, len(channelIDs))
		for _, id := range channelIDs {
			publications = append(publications, map[string]interface{}{"publicationId": id})
		}
		input["publications"] = publications
	}

	if features := req.FeatureList(); len(features) > 0 {
		input["metafields"] = []map[string]interface{}{
			{
				"namespace": "custom",
				"key":       "features",
				"type":      "rich_text_field",
				"value":     featuresRichText(features),
			},
		}
	}

	if req.Price != nil {
		variant := map[string]interface{}{
			"price": strconv.FormatFloat(*req.Price, 'f', 2, 64),
		}
		if req.CompareAtPrice != nil {
			variant["compareAtPrice"] = strconv.FormatFloat(*req.CompareAtPrice, 'f', 2, 64)
		}
		input["variants"] = []map[string]interface{}{variant}
	}

	var payload productCreatePayload
	if err := c.execute(mutation, map[string]interface{}{"input": input}, &payload); err != nil {
		return nil, err
	}

	if len(payload.ProductCreate.UserErrors) > 0 {
		return nil, fmt.Errorf("failed to create product: %s", joinUserErrors(payload.ProductCreate.UserErrors))
	}
	if payload.ProductCreate.Product == nil {
		return nil, errors.New("productCreate returned no product")
	}

	p := payload.ProductCreate.Product
	return &models.RemoteProduct{
		ID:        p.ID,
		Title:     p.Title,
		Handle:    p.Handle,
		Status:    p.Status,
		Tags:      p.Tags,
		CreatedAt: p.CreatedAt,
	}, nil
}

// featuresRichText wraps feature lines as unordered list items in
// Shopify's rich text metafield document format.
func featuresRichText(features []string) string {
	items := make([]map[string]interface{}, 0, len(features))
	for _, feature := range features {
		items = append(items, map[string]interface{}{
			"type": "list-item",
			"children": []map[string]interface{}{
				{"type": "text", "value": feature},
			},
		})
	}

	doc := map[string]interface{}{
		"type": "root",
		"children": []map[string]interface{}{
			{
				"type":     "list",
				"listType": "unordered",
				"children": items,
			},
		},
	}

	value, _ := json.Marshal(doc)
	return string(value)
}

// uploadAndAttachMedia runs the per-image stage/upload/attach loop.
// One result per input image, in input order; a slow or corrupt image
// only fails its own slot.
func (c *Client) uploadAndAttachMedia(productID string, imgs []models.ImageFile) []models.MediaResult {
	results := make([]models.MediaResult, 0, len(imgs))

	for _, img := range imgs {
		media, err := c.publishImage(productID, img)
		if err != nil {
			c.logger.Error("Failed to upload %s: %v", img.Filename, err)
			results = append(results, models.MediaResult{
				Filename: img.Filename,
				Status:   models.MediaStatusFailed,
				Error:    err.Error(),
			})
			continue
		}

		c.logger.Info("Successfully uploaded: %s", img.Filename)
		results = append(results, models.MediaResult{
			Filename: img.Filename,
			Status:   models.MediaStatusSuccess,
			Media:    media,
		})
	}

	return results
}

func (c *Client) publishImage(productID string, img models.ImageFile) (*models.MediaImage, error) {
	target, err := c.generateStagedUpload(img)
	if err != nil {
		return nil, err
	}

	if err := c.uploadToStagedTarget(target, img); err != nil {
		return nil, err
	}

	return c.attachMedia(productID, target.ResourceURL, img.Filename)
}

func (c *Client) generateStagedUpload(img models.ImageFile) (*StagedTarget, error) {
	mutation := `
		mutation stagedUploadsCreate($input: [StagedUploadInput!]!) {
			stagedUploadsCreate(input: $input) {
				stagedTargets {
					url
					resourceUrl
					parameters {
						name
						value
					}
				}
				userErrors {
					field
					message
				}
			}
		}
	`

	variables := map[string]interface{}{
		"input": []map[string]interface{}{
			{
				"filename":   img.Filename,
				"mimeType":   img.MimeType,
				"resource":   "IMAGE",
				"httpMethod": "POST",
				"fileSize":   strconv.FormatInt(img.Size, 10),
			},
		},
	}

	var payload stagedUploadsCreatePayload
	if err := c.execute(mutation, variables, &payload); err != nil {
		return nil, err
	}

	if len(payload.StagedUploadsCreate.UserErrors) > 0 {
		return nil, fmt.Errorf("failed to generate staged upload: %s", joinUserErrors(payload.StagedUploadsCreate.UserErrors))
	}
	if len(payload.StagedUploadsCreate.StagedTargets) == 0 {
		return nil, errors.New("stagedUploadsCreate returned no targets")
	}

	return &payload.StagedUploadsCreate.StagedTargets[0], nil
}

// uploadToStagedTarget posts the file to the staged URL. Shopify
// requires its parameters as form fields ahead of the file part.
func (c *Client) uploadToStagedTarget(target *StagedTarget, img models.ImageFile) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, param := range target.Parameters {
		if err := writer.WriteField(param.Name, param.Value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", param.Name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, img.Filename))
	header.Set("Content-Type", img.MimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequest("POST", target.URL, &body)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload to staged URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("staged upload failed: %d - %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func (c *Client) attachMedia(productID, resourceURL, altText string) (*models.MediaImage, error) {
	mutation := `
		mutation productCreateMedia($productId: ID!, $media: [CreateMediaInput!]!) {
			productCreateMedia(productId: $productId, media: $media) {
				media {
					id
					alt
					mediaContentType
					status
					... on MediaImage {
						id
						image {
							url
							altText
						}
					}
				}
				mediaUserErrors {
					field
					message
					code
				}
			}
		}
	`

	variables := map[string]interface{}{
		"productId": productID,
		"media": []map[string]interface{}{
			{
				"originalSource":   resourceURL,
				"alt":              altText,
				"mediaContentType": "IMAGE",
			},
		},
	}

	var payload productCreateMediaPayload
	if err := c.execute(mutation, variables, &payload); err != nil {
		return nil, err
	}

	if len(payload.ProductCreateMedia.MediaUserErrors) > 0 {
		return nil, fmt.Errorf("failed to attach media: %s", joinUserErrors(payload.ProductCreateMedia.MediaUserErrors))
	}
	if len(payload.ProductCreateMedia.Media) == 0 {
		return nil, errors.New("productCreateMedia returned no media")
	}

	m := payload.ProductCreateMedia.Media[0]
	media := &models.MediaImage{
		ID:               m.ID,
		Alt:              m.Alt,
		MediaContentType: m.MediaContentType,
		Status:           m.Status,
	}
	if m.Image != nil {
		media.URL = m.Image.URL
	}
	return media, nil
}
