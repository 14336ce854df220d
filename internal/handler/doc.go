// Package handler implements the HTTP API of pcg serve.
//
// KnowledgeHandler wraps a service.KnowledgeService:
//
//	GET  /api/knowledge              loaded file, canon size, process signatures
//	POST /api/knowledge/reload       re-read the knowledge file
//	GET  /api/canon                  in-memory canon as CGIF
//	GET  /api/canon/{name}           canon saved in the canon database
//	POST /api/project                {target, filter} CGIF projection
//	POST /api/processes/{name}/run   {args} run to quiescence
//
// Errors are returned as JSON {error, details}. Parse and structural errors
// map to 400, missing files to 404, anything else to 500.
//
// Recover and Logger are the middleware applied by the server; Chain
// composes them.
package handler
