package httpapi

// landingPageHTML is served at GET / when the caller's Accept header
// prefers text/html over JSON.
const landingPageHTML = `<!DOCTYPE html>
<html>
<head><title>EdgeSearch</title></head>
<body>
<h1>EdgeSearch</h1>
<p>Sharded inverted-index full-text search. See GET /indexes and POST /:index/search.</p>
</body>
</html>
`
