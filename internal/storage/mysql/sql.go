package mysql

const upsertListingSQL = `
INSERT INTO listings
  (id, title, location, description, price, bedrooms, bathrooms, features,
   listed_date, lat, lon, type, status, area_sqft, year_built, image)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  title       = VALUES(title),
  location    = VALUES(location),
  description = VALUES(description),
  price       = VALUES(price),
  bedrooms    = VALUES(bedrooms),
  bathrooms   = VALUES(bathrooms),
  features    = VALUES(features),
  listed_date = VALUES(listed_date),
  lat         = VALUES(lat),
  lon         = VALUES(lon),
  type        = VALUES(type),
  status      = VALUES(status),
  area_sqft   = VALUES(area_sqft),
  year_built  = VALUES(year_built),
  image       = VALUES(image),
  updated_at  = CURRENT_TIMESTAMP
`

const insertMissSQL = `
INSERT INTO ingest_misses (id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE http_status = VALUES(http_status), reason = VALUES(reason), seen_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const listingColumns = `
  id, title, location, description, price, bedrooms, bathrooms, features,
  listed_date, lat, lon, type, status, area_sqft, year_built, image
`

const getListingSQL = `SELECT` + listingColumns + `FROM listings WHERE id = ?`

// id order is the catalog order the filter engine treats as "recommended".
const listListingsSQL = `SELECT` + listingColumns + `FROM listings ORDER BY id`
