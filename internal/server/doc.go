// Package server runs the local HTTP endpoint that completes the OAuth2 authorization code flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] registers method patterns on an [http.ServeMux]; the first [Middleware] added is the outermost.
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel. It only processes one callback.
//
// # Callback Server
//
// [CallbackServer] binds the redirect address from the config (127.0.0.1:8888 by default),
// waits for the single result and shuts down. Both `spt auth login` and the TUI's login flow use it.
package server
