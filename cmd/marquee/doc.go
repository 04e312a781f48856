// Command marquee enriches media titles with metadata from several public
// APIs and keeps the merged records in a local store.
//
// Typical use:
//
//	marquee enrich tt0111161
//	marquee enrich "Spirited Away" --year 2001
//	marquee catalog run https://v3-cinemeta.strem.io/catalog/movie/top.json
//	producer | marquee serve
package main
