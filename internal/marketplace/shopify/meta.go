package shopify

import (
	"fmt"

	"marketpush/internal/models"
)

// UpdateProductMeta resolves a product handle to its id and rewrites
// its SEO title and description.
func (c *Client) UpdateProductMeta(handle, metaTitle, metaDescription string) (*models.SEOResource, error) {
	productID, err := c.productIDByHandle(handle)
	if err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, fmt.Errorf("product not found with handle: %s", handle)
	}

	mutation := `
		mutation productUpdate($input: ProductInput!) {
			productUpdate(input: $input) {
				product {
					id
					handle
					title
					seo {
						title
						description
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
		"input": map[string]interface{}{
			"id": productID,
			"seo": map[string]interface{}{
				"title":       metaTitle,
				"description": metaDescription,
			},
		},
	}

	var payload productUpdatePayload
	if err := c.execute(mutation, variables, &payload); err != nil {
		return nil, err
	}

	if len(payload.ProductUpdate.UserErrors) > 0 {
		return nil, fmt.Errorf("failed to update product meta: %s", joinUserErrors(payload.ProductUpdate.UserErrors))
	}
	if payload.ProductUpdate.Product == nil {
		return nil, fmt.Errorf("productUpdate returned no product for handle %s", handle)
	}

	c.logger.Info("Updated product meta for: %s", handle)
	return seoResource(payload.ProductUpdate.Product), nil
}

// UpdateCollectionMeta is the collection counterpart of
// UpdateProductMeta.
func (c *Client) UpdateCollectionMeta(handle, metaTitle, metaDescription string) (*models.SEOResource, error) {
	collectionID, err := c.collectionIDByHandle(handle)
	if err != nil {
		return nil, err
	}
	if collectionID == "" {
		return nil, fmt.Errorf("collection not found with handle: %s", handle)
	}

	mutation := `
		mutation collectionUpdate($input: CollectionInput!) {
			collectionUpdate(input: $input) {
				collection {
					id
					handle
					title
					seo {
						title
						description
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
		"input": map[string]interface{}{
			"id": collectionID,
			"seo": map[string]interface{}{
				"title":       metaTitle,
				"description": metaDescription,
			},
		},
	}

	var payload collectionUpdatePayload
	if err := c.execute(mutation, variables, &payload); err != nil {
		return nil, err
	}

	if len(payload.CollectionUpdate.UserErrors) > 0 {
		return nil, fmt.Errorf("failed to update collection meta: %s", joinUserErrors(payload.CollectionUpdate.UserErrors))
	}
	if payload.CollectionUpdate.Collection == nil {
		return nil, fmt.Errorf("collectionUpdate returned no collection for handle %s", handle)
	}

	c.logger.Info("Updated collection meta for: %s", handle)
	return seoResource(payload.CollectionUpdate.Collection), nil
}

func (c *Client) productIDByHandle(handle string) (string, error) {
	query := `
		query getProductByHandle($handle: String!) {
			productByHandle(handle: $handle) {
				id
				handle
				title
			}
		}
	`

	var payload byHandlePayload
	if err := c.execute(query, map[string]interface{}{"handle": handle}, &payload); err != nil {
		return "", err
	}
	if payload.ProductByHandle == nil {
		return "", nil
	}
	return payload.ProductByHandle.ID, nil
}

func (c *Client) collectionIDByHandle(handle string) (string, error) {
	query := `
		query getCollectionByHandle($handle: String!) {
			collectionByHandle(handle: $handle) {
				id
				handle
				title
			}
		}
	`

	var payload byHandlePayload
	if err := c.execute(query, map[string]interface{}{"handle": handle}, &payload); err != nil {
		return "", err
	}
	if payload.CollectionByHandle == nil {
		return "", nil
	}
	return payload.CollectionByHandle.ID, nil
}

func seoResource(node *seoNode) *models.SEOResource {
	return &models.SEOResource{
		ID:     node.ID,
		Handle: node.Handle,
		Title:  node.Title,
		SEO: models.SEO{
			Title:       node.SEO.Title,
			Description: node.SEO.Description,
		},
	}
}
