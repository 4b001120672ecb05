// Command intellectactl runs the Intellecta project management server and
// provides administrative commands over its database.
//
// # Quick Start
//
//	# Apply the schema
//	intellectactl db migrate
//
//	# Start the server
//	intellectactl server --port 5000
//
//	# Create a project and add members from the command line
//	intellectactl project create --name Apollo --key APOLLO --owner 'auth0|alice'
//	intellectactl project add-users 1 'auth0|bob' 'auth0|carol'
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - AUTH0_DOMAIN, AUTH0_AUDIENCE: token issuer and API audience
//   - AUTH0_CLIENT_ID, AUTH0_CLIENT_SECRET: application credentials for login, signup and the Management API
//   - OPENAI_API_KEY: enables the assistant endpoints
//   - INTELLECTA_CONFIG_PATH: directory holding intellecta.yml
//   - INTELLECTA_LOG_LEVEL: log level (debug, info, warn, error)
//   - INTELLECTA_AUDIT_LOG: audit destination, "stdout" or a file path; unset disables audit
//   - PORT: server port (default: 5000)
package main
