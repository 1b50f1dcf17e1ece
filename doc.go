// Package auth provides the session layer for the developergarten API: JWT
// issuance and rotation, Bun-backed user and token repositories, and HTTP
// helpers for cookie handling.
//
// Token lifecycle:
//   - TokenService signs and decodes HS256 tokens. Access tokens live for an
//     hour, refresh tokens for thirty days, and each refresh token carries the
//     id of an AuthToken row so a session can be revoked server side.
//   - TokenRotator exchanges a refresh token for a fresh pair. The refresh
//     token itself is reissued only when it has aged past the renewal
//     boundary; otherwise the original keeps its expiry and only the access
//     token is replaced.
//
// Session consumption:
//   - SessionConsumer is fail-open middleware. It resolves whatever identity
//     the request carries (header or cookies), rotates expiring tokens in
//     place, and stores the session in the request context. It never rejects
//     a request; route guards that must reject live in middleware/jwtware.
//
// Social login lives in the social subpackage, which builds on the
// repositories and token service defined here.
package auth
