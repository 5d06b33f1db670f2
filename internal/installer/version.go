package installer

// Version is the dmenv release installed by default. dmenv-release
// installer rewrites this line once the release artifacts are published.
const Version = "v0.20.0"
