package mysql

const insertProductSQL = `
INSERT INTO products
  (name, description, price, category, image_url,
   average_rating, hybrid_score, total_reviews,
   quality_score, performance_score, shipping_score)
VALUES
  (?, ?, ?, ?, ?, 0, 0, 0, 0, 0, 0)
`

const deleteProductSQL = `DELETE FROM products WHERE id = ?`

// Aggregates are overwritten wholesale; there is no incremental path.
const updateProductScoresSQL = `
UPDATE products SET
  average_rating    = ?,
  hybrid_score      = ?,
  total_reviews     = ?,
  quality_score     = ?,
  performance_score = ?,
  shipping_score    = ?,
  updated_at        = CURRENT_TIMESTAMP
WHERE id = ?
`

const insertReviewSQL = `
INSERT INTO reviews
  (product_id, comment, star_rating, sentiment_score, sentiment_label, hybrid_score, category, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
`

// One-time provisional-to-final transition; the WHERE clause keeps an already
// enriched review immutable.
const finalizeReviewSQL = `
UPDATE reviews SET
  sentiment_label = ?,
  sentiment_score = ?,
  hybrid_score    = ?
WHERE id = ? AND sentiment_score IS NULL
`

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`

const getProductSQL = `
SELECT id, name, description, price, category, image_url,
       average_rating, hybrid_score, total_reviews,
       quality_score, performance_score, shipping_score
FROM products
WHERE id = ?
`

const listProductsSQL = `
SELECT id, name, description, price, category, image_url,
       average_rating, hybrid_score, total_reviews,
       quality_score, performance_score, shipping_score
FROM products
ORDER BY id
`

const getReviewSQL = `
SELECT id, product_id, comment, star_rating, sentiment_score, sentiment_label, hybrid_score, category, created_at
FROM reviews
WHERE id = ?
`

const listProductReviewsSQL = `
SELECT id, product_id, comment, star_rating, sentiment_score, sentiment_label, hybrid_score, category, created_at
FROM reviews
WHERE product_id = ?
ORDER BY created_at DESC, id DESC
`

const listReviewsBySentimentSQL = `
SELECT id, product_id, comment, star_rating, sentiment_score, sentiment_label, hybrid_score, category, created_at
FROM reviews
WHERE LOWER(sentiment_label) = LOWER(?)
ORDER BY created_at DESC, id DESC
`
