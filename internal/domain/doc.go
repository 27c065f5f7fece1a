// Package domain contains the core entities of the platform: novels and
// their chapter metadata, background jobs with their progress state, and
// per-novel glossary terms used as translation context. Entities validate
// themselves; persistence lives in the store packages.
package domain
