// Package wellknown generates the files that let iOS and Android open the
// link domain in the app: apple-app-site-association and assetlinks.json.
//
// Both are derived from the route table, so a route added to the table is
// claimed for the app as soon as the files are regenerated. Publisher
// uploads them to the S3 bucket serving the domain.
package wellknown
