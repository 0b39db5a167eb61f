// Package declare builds entities from YAML or JSON declaration files.
//
// A document maps entity names to their declarations:
//
//	entities:
//	  user:
//	    root: [users, user]
//	    expose:
//	      - name: name
//	      - name: email
//	        if: admin
//	      - name: address
//	        using: address
//	      - name: meta
//	        expose:
//	          - names: [created_at, updated_at]
//	            format_with: iso8601
//
// Unknown keys are rejected with entity.ErrInvalidOption. References in
// extends and using resolve through the registry, so documents may refer to
// entities declared in other files loaded into the same registry.
package declare
