package store

import "fmt"

// schemaSQL builds the schema for the two collections. The catalog holds one
// record per course (record id = course title) with the title embedding used
// for fuzzy name resolution; course_content holds the indexed chunks.
func schemaSQL(dimension int) string {
	return fmt.Sprintf(`
    -- ==========================================================================
    -- COURSE CATALOG (name resolution + outline metadata)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS course_catalog SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON course_catalog TYPE string;
    DEFINE FIELD IF NOT EXISTS instructor ON course_catalog TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS link ON course_catalog TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS lessons_json ON course_catalog TYPE string;
    DEFINE FIELD IF NOT EXISTS lesson_count ON course_catalog TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS embedding ON course_catalog TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS created ON course_catalog TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS catalog_title ON course_catalog FIELDS title UNIQUE;
    DEFINE INDEX IF NOT EXISTS catalog_embedding ON course_catalog FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;

    -- ==========================================================================
    -- COURSE CONTENT (chunked lesson text)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS course_content SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS content ON course_content TYPE string;
    DEFINE FIELD IF NOT EXISTS course_title ON course_content TYPE string;
    DEFINE FIELD IF NOT EXISTS lesson_number ON course_content TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS chunk_index ON course_content TYPE int;
    DEFINE FIELD IF NOT EXISTS embedding ON course_content TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS created ON course_content TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS content_course ON course_content FIELDS course_title;
    DEFINE INDEX IF NOT EXISTS content_embedding ON course_content FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
`, dimension, dimension)
}
